// Package settings loads cfgedit's own configuration: the provider profile
// written into the agent config, the editor defaults, and logging/backup
// preferences.
//
// The file lives at $XDG_CONFIG_HOME/cfgedit/config.yaml (or the platform
// equivalent) and is optional; every field has a default.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kevinwang15/cfgedit"
)

// Settings is the decoded configuration file.
type Settings struct {
	LogLevel string   `yaml:"log_level"`
	Backup   *bool    `yaml:"backup"`
	Suffix   string   `yaml:"backup_suffix"`
	Provider Provider `yaml:"provider"`
	Editor   Editor   `yaml:"editor"`
}

// Provider is the model provider block of the agent config.
type Provider struct {
	Name                   string `yaml:"name"`
	BaseURL                string `yaml:"base_url"`
	WireAPI                string `yaml:"wire_api"`
	EnvKey                 string `yaml:"env_key"`
	RequiresOpenAIAuth     *bool  `yaml:"requires_openai_auth"`
	Model                  string `yaml:"model"`
	ReasoningEffort        string `yaml:"reasoning_effort"`
	DisableResponseStorage *bool  `yaml:"disable_response_storage"`
}

// Editor holds the editor extension values.
type Editor struct {
	APIBase             string `yaml:"api_base"`
	PreferredAuthMethod string `yaml:"preferred_auth_method"`
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "off"}

// Default returns the stock settings.
func Default() *Settings {
	s := &Settings{}
	fillDefaults(s)
	return s
}

func boolPtr(b bool) *bool { return &b }

func fillDefaults(s *Settings) {
	p := cfgedit.DefaultProviderProfile()
	e := cfgedit.DefaultEditorProfile()

	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Backup == nil {
		s.Backup = boolPtr(true)
	}
	if s.Suffix == "" {
		s.Suffix = cfgedit.DefaultBackupSuffix
	}
	if s.Provider.Name == "" {
		s.Provider.Name = p.Name
	}
	if s.Provider.BaseURL == "" {
		s.Provider.BaseURL = p.BaseURL
	}
	if s.Provider.WireAPI == "" {
		s.Provider.WireAPI = p.WireAPI
	}
	if s.Provider.EnvKey == "" {
		s.Provider.EnvKey = p.EnvKey
	}
	if s.Provider.RequiresOpenAIAuth == nil {
		s.Provider.RequiresOpenAIAuth = boolPtr(p.RequiresOpenAIAuth)
	}
	if s.Provider.Model == "" {
		s.Provider.Model = p.Model
	}
	if s.Provider.ReasoningEffort == "" {
		s.Provider.ReasoningEffort = p.ReasoningEffort
	}
	if s.Provider.DisableResponseStorage == nil {
		s.Provider.DisableResponseStorage = boolPtr(p.DisableResponseStorage)
	}
	if s.Editor.APIBase == "" {
		s.Editor.APIBase = e.APIBase
	}
	if s.Editor.PreferredAuthMethod == "" {
		s.Editor.PreferredAuthMethod = e.PreferredAuthMethod
	}
}

// Path is the default location of the settings file.
func Path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("failed to locate config directory: %w", err)
		}
	}
	return filepath.Join(dir, "cfgedit", "config.yaml"), nil
}

// Load reads the settings file at path, or the default location when path
// is empty. A missing file yields the defaults. Environment overrides are
// applied and the result is validated.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s := &Settings{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fillDefaults(s)
	s.ApplyEnvOverrides()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnvOverrides applies CFGEDIT_LOG_LEVEL, CFGEDIT_BACKUP and
// CFGEDIT_PROVIDER_BASE_URL.
func (s *Settings) ApplyEnvOverrides() {
	if v := os.Getenv("CFGEDIT_LOG_LEVEL"); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CFGEDIT_BACKUP"); v != "" {
		on := v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
		s.Backup = &on
	}
	if v := os.Getenv("CFGEDIT_PROVIDER_BASE_URL"); v != "" {
		s.Provider.BaseURL = v
	}
}

// Validate reports the first invalid field.
func (s *Settings) Validate() error {
	valid := false
	for _, l := range logLevels {
		if s.LogLevel == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("log_level %q must be one of %s", s.LogLevel, strings.Join(logLevels, ", "))
	}
	if strings.TrimSpace(s.Provider.Name) == "" {
		return errors.New("provider.name must not be empty")
	}
	if strings.TrimSpace(s.Provider.BaseURL) == "" {
		return errors.New("provider.base_url must not be empty")
	}
	if strings.TrimSpace(s.Provider.Model) == "" {
		return errors.New("provider.model must not be empty")
	}
	return nil
}

// BackupEnabled reports whether a backup is taken before the first write.
func (s *Settings) BackupEnabled() bool { return s.Backup == nil || *s.Backup }

// ProviderProfile converts the provider block.
func (s *Settings) ProviderProfile() cfgedit.ProviderProfile {
	return cfgedit.ProviderProfile{
		Name:                   s.Provider.Name,
		BaseURL:                s.Provider.BaseURL,
		WireAPI:                s.Provider.WireAPI,
		EnvKey:                 s.Provider.EnvKey,
		RequiresOpenAIAuth:     s.Provider.RequiresOpenAIAuth != nil && *s.Provider.RequiresOpenAIAuth,
		Model:                  s.Provider.Model,
		ReasoningEffort:        s.Provider.ReasoningEffort,
		DisableResponseStorage: s.Provider.DisableResponseStorage != nil && *s.Provider.DisableResponseStorage,
	}
}

// EditorProfile converts the editor block.
func (s *Settings) EditorProfile() cfgedit.EditorProfile {
	return cfgedit.EditorProfile{
		APIBase:             s.Editor.APIBase,
		PreferredAuthMethod: s.Editor.PreferredAuthMethod,
	}
}
