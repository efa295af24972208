package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinwang15/cfgedit"
	"github.com/kevinwang15/cfgedit/internal/settings"
)

type fixture struct {
	dir string
	loc cfgedit.StaticLocator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir: dir,
		loc: cfgedit.StaticLocator{
			cfgedit.AssistantSettings:  filepath.Join(dir, "claude", "settings.json"),
			cfgedit.AssistantExtension: filepath.Join(dir, "claude", "config.json"),
			cfgedit.AgentAuth:          filepath.Join(dir, "codex", "auth.json"),
			cfgedit.AgentConfig:        filepath.Join(dir, "codex", "config.toml"),
			cfgedit.EditorSettings:     filepath.Join(dir, "Code", "User", "settings.json"),
		},
	}
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	a := &app{
		locator:  f.loc,
		settings: settings.Default(),
		log:      hclog.NewNullLogger(),
	}
	cmd := newRootCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (f *fixture) read(t *testing.T, kind cfgedit.Kind) string {
	t.Helper()
	b, err := os.ReadFile(f.loc[kind])
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) write(t *testing.T, kind cfgedit.Kind, content string) {
	t.Helper()
	p := f.loc[kind]
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestApplyAssistantSettings(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AssistantSettings, `{"theme": "dark", "env": {"EXTRA": "x"}}`)

	out, err := f.run(t, "", "apply", "assistant-settings", "--api-key", "sk-test-123456789", "--base-url", "https://api.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "updated")
	assert.NotContains(t, out, "sk-test-123456789")

	got := f.read(t, cfgedit.AssistantSettings)
	want := `{
  "env": {
    "ANTHROPIC_AUTH_TOKEN": "sk-test-123456789",
    "ANTHROPIC_BASE_URL": "https://api.example.com",
    "CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC": "1",
    "EXTRA": "x"
  },
  "permissions": {
    "allow": [],
    "deny": []
  },
  "theme": "dark"
}
`
	assert.Equal(t, want, got)

	_, err = os.Stat(f.loc[cfgedit.AssistantSettings] + cfgedit.DefaultBackupSuffix)
	assert.NoError(t, err, "backup should exist")

	out, err = f.run(t, "", "apply", "assistant-settings", "--api-key", "sk-test-123456789", "--base-url", "https://api.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestApplyUsesSettingsProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "", "apply", "agent-config", "agent-auth", "--api-key", "key-abcdefgh12")
	require.NoError(t, err)

	assert.Contains(t, f.read(t, cfgedit.AgentConfig), `[model_providers.88code]`)
	assert.Contains(t, f.read(t, cfgedit.AgentAuth), `"OPENAI_API_KEY": "key-abcdefgh12"`)
}

func TestApplyValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "", "apply", "agent-auth")
	require.Error(t, err)
	assert.ErrorIs(t, err, cfgedit.ErrValidation)
	_, statErr := os.Stat(f.loc[cfgedit.AgentAuth])
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "", "apply", "nope", "--api-key", "k")
	assert.ErrorIs(t, err, cfgedit.ErrValidation)
}

func TestApplyDryRunDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AgentAuth, "{\n  \"OPENAI_API_KEY\": \"old\"\n}\n")

	out, err := f.run(t, "", "apply", "agent-auth", "--api-key", "new-key", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `-  "OPENAI_API_KEY": "old"`)
	assert.Contains(t, out, `+  "OPENAI_API_KEY": "new-key"`)
	assert.Equal(t, "{\n  \"OPENAI_API_KEY\": \"old\"\n}\n", f.read(t, cfgedit.AgentAuth))
}

func TestApplyAdvancedFromStdin(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AgentAuth, `{"a": 1, "b": 2}`)

	_, err := f.run(t, `{"b": 3, "c": 4}`, "apply-advanced", "agent-auth")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 3,\n  \"c\": 4\n}\n", f.read(t, cfgedit.AgentAuth))
}

func TestApplyAdvancedMalformed(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AgentAuth, `{"a": 1}`)

	_, err := f.run(t, `{"b": `, "apply-advanced", "agent-auth")
	assert.ErrorIs(t, err, cfgedit.ErrParse)
	assert.Equal(t, `{"a": 1}`, f.read(t, cfgedit.AgentAuth))
}

func TestApplyAdvancedFromFile(t *testing.T) {
	f := newFixture(t)
	repl := filepath.Join(f.dir, "repl.toml")
	require.NoError(t, os.WriteFile(repl, []byte("model = \"o3\"\n"), 0o600))

	_, err := f.run(t, "", "apply-advanced", "agent-config", "--file", repl)
	require.NoError(t, err)
	assert.Equal(t, "model = \"o3\"\n", f.read(t, cfgedit.AgentConfig))
}

func TestShowFormats(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AgentAuth, `{"z": 1, "a": [true, "x"]}`)

	out, err := f.run(t, "", "show", "agent-auth")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": [\n    true,\n    \"x\"\n  ]\n}\n", out)

	out, err = f.run(t, "", "show", "agent-auth", "-o", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.Index(out, "z:") < strings.Index(out, "a:"), "yaml keeps key order: %q", out)

	out, err = f.run(t, "", "show", "agent-auth", "-o", "toml")
	require.NoError(t, err)
	assert.Equal(t, "z = 1\na = [true, \"x\"]\n", out)

	_, err = f.run(t, "", "show", "agent-auth", "-o", "xml")
	assert.Error(t, err)
}

func TestShowMissing(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "", "show", "agent-config")
	require.NoError(t, err)
	assert.Contains(t, out, "does not exist")
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.write(t, cfgedit.AgentAuth, `{}`)

	out, err := f.run(t, "", "delete", "agent-auth", "agent-config")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+f.loc[cfgedit.AgentAuth])
	assert.Contains(t, out, f.loc[cfgedit.AgentConfig]+" was already absent")

	_, err = f.run(t, "", "delete", "editor-settings")
	assert.ErrorIs(t, err, cfgedit.ErrValidation)
}

func TestPaths(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "", "paths")
	require.NoError(t, err)
	for _, k := range cfgedit.Kinds() {
		assert.Contains(t, out, f.loc[k])
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskAPIKey(""))
	assert.Equal(t, "***", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghuvwxyz"))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, newLogger("info", true, &buf).IsDebug())
	assert.False(t, newLogger("info", false, &buf).IsDebug())
	assert.True(t, newLogger("bogus", false, &buf).IsInfo())
}
