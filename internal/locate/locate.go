// Package locate resolves where the assistant, agent and editor keep their
// configuration files on this machine.
package locate

import (
	"os"
	"path/filepath"

	"github.com/kevinwang15/cfgedit"
)

// EditorProducts are the editor distributions searched, in priority order.
var EditorProducts = []string{"Code", "Code - Insiders", "VSCodium", "Code - OSS"}

// Locator implements cfgedit.Locator from the environment and home
// directory. Zero fields fall back to the os package.
type Locator struct {
	Getenv    func(string) string
	HomeDir   func() (string, error)
	ConfigDir func() (string, error)
	Stat      func(string) (os.FileInfo, error)
}

// Default returns a Locator over the real environment.
func Default() *Locator {
	return &Locator{
		Getenv:    os.Getenv,
		HomeDir:   os.UserHomeDir,
		ConfigDir: os.UserConfigDir,
		Stat:      os.Stat,
	}
}

var _ cfgedit.Locator = (*Locator)(nil)

// AssistantDir is CLAUDE_CONFIG_DIR, or ~/.claude.
func (l *Locator) AssistantDir() (string, error) {
	return l.dir("CLAUDE_CONFIG_DIR", ".claude")
}

// AgentDir is CODEX_HOME, or ~/.codex.
func (l *Locator) AgentDir() (string, error) {
	return l.dir("CODEX_HOME", ".codex")
}

func (l *Locator) dir(env, name string) (string, error) {
	if d := l.getenv(env); d != "" {
		return d, nil
	}
	home, err := l.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, name), nil
}

// Path returns the document location. The editor settings file must already
// exist; the first candidate found wins.
func (l *Locator) Path(kind cfgedit.Kind) (string, error) {
	switch kind {
	case cfgedit.AssistantSettings, cfgedit.AssistantExtension:
		dir, err := l.AssistantDir()
		if err != nil {
			return "", l.unresolved(kind, err)
		}
		if kind == cfgedit.AssistantSettings {
			return filepath.Join(dir, "settings.json"), nil
		}
		return filepath.Join(dir, "config.json"), nil
	case cfgedit.AgentAuth, cfgedit.AgentConfig:
		dir, err := l.AgentDir()
		if err != nil {
			return "", l.unresolved(kind, err)
		}
		if kind == cfgedit.AgentAuth {
			return filepath.Join(dir, "auth.json"), nil
		}
		return filepath.Join(dir, "config.toml"), nil
	case cfgedit.EditorSettings:
		candidates := l.Candidates(kind)
		for _, p := range candidates {
			if info, err := l.stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		return "", &cfgedit.PathResolutionError{
			Kind:       kind,
			Candidates: candidates,
			Hint:       "install the editor and open it once so it creates its user settings.json",
		}
	}
	return "", &cfgedit.PathResolutionError{Kind: kind, Hint: "unknown document kind"}
}

// Candidates lists the locations Path considers for kind.
func (l *Locator) Candidates(kind cfgedit.Kind) []string {
	if kind != cfgedit.EditorSettings {
		p, err := l.Path(kind)
		if err != nil {
			return nil
		}
		return []string{p}
	}
	base, err := l.configDir()
	if err != nil || base == "" {
		return nil
	}
	out := make([]string, 0, len(EditorProducts))
	for _, prod := range EditorProducts {
		out = append(out, filepath.Join(base, prod, "User", "settings.json"))
	}
	return out
}

func (l *Locator) unresolved(kind cfgedit.Kind, err error) error {
	return &cfgedit.PathResolutionError{Kind: kind, Hint: "cannot determine home directory: " + err.Error()}
}

func (l *Locator) getenv(k string) string {
	if l.Getenv == nil {
		return os.Getenv(k)
	}
	return l.Getenv(k)
}

func (l *Locator) homeDir() (string, error) {
	if l.HomeDir == nil {
		return os.UserHomeDir()
	}
	return l.HomeDir()
}

func (l *Locator) configDir() (string, error) {
	if l.ConfigDir == nil {
		return os.UserConfigDir()
	}
	return l.ConfigDir()
}

func (l *Locator) stat(p string) (os.FileInfo, error) {
	if l.Stat == nil {
		return os.Stat(p)
	}
	return l.Stat(p)
}
