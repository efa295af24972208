package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinwang15/cfgedit"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CFGEDIT_LOG_LEVEL", "CFGEDIT_BACKUP", "CFGEDIT_PROVIDER_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "info", s.LogLevel)
	assert.True(t, s.BackupEnabled())
	assert.Equal(t, cfgedit.DefaultBackupSuffix, s.Suffix)
	assert.Equal(t, cfgedit.DefaultProviderProfile(), s.ProviderProfile())
	assert.Equal(t, cfgedit.DefaultEditorProfile(), s.EditorProfile())
	assert.NoError(t, s.Validate())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfgedit.DefaultProviderProfile(), s.ProviderProfile())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
log_level: debug
backup: false
provider:
  name: internal
  base_url: https://llm.example.com/v1
  requires_openai_auth: false
editor:
  preferred_auth_method: chatgpt
`)

	s, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.False(t, s.BackupEnabled())

	prof := s.ProviderProfile()
	assert.Equal(t, "internal", prof.Name)
	assert.Equal(t, "https://llm.example.com/v1", prof.BaseURL)
	assert.False(t, prof.RequiresOpenAIAuth)
	assert.Equal(t, "gpt-5-codex", prof.Model)
	assert.Equal(t, "responses", prof.WireAPI)
	assert.True(t, prof.DisableResponseStorage)

	ed := s.EditorProfile()
	assert.Equal(t, "chatgpt", ed.PreferredAuthMethod)
	assert.Equal(t, cfgedit.DefaultEditorProfile().APIBase, ed.APIBase)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CFGEDIT_LOG_LEVEL", "WARN")
	t.Setenv("CFGEDIT_BACKUP", "no")
	t.Setenv("CFGEDIT_PROVIDER_BASE_URL", "https://proxy.example.com/v1")

	s, err := Load(writeFile(t, "log_level: error\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)
	assert.False(t, s.BackupEnabled())
	assert.Equal(t, "https://proxy.example.com/v1", s.Provider.BaseURL)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "provider: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "bad_log_level", mutate: func(s *Settings) { s.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "blank_provider", mutate: func(s *Settings) { s.Provider.Name = "  " }, wantErr: "provider.name"},
		{name: "blank_base_url", mutate: func(s *Settings) { s.Provider.BaseURL = "" }, wantErr: "provider.base_url"},
		{name: "blank_model", mutate: func(s *Settings) { s.Provider.Model = "" }, wantErr: "provider.model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
