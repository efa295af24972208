package cfgedit

import (
	"fmt"
	"strings"
)

// Kind names one target document.
type Kind string

const (
	// AssistantSettings is the code-assistant CLI settings.json.
	AssistantSettings Kind = "assistant-settings"
	// AssistantExtension is the key file read by the assistant's editor extension.
	AssistantExtension Kind = "assistant-extension"
	// AgentAuth is the terminal agent's auth.json.
	AgentAuth Kind = "agent-auth"
	// AgentConfig is the terminal agent's config.toml provider table.
	AgentConfig Kind = "agent-config"
	// EditorSettings is the editor's user settings.json (JSON with comments).
	EditorSettings Kind = "editor-settings"
)

// Format is the on-disk syntax of a document.
type Format int

const (
	FormatJSON Format = iota
	FormatTOML
	FormatJSONC
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSONC:
		return "jsonc"
	default:
		return "json"
	}
}

// Managed keys.
const (
	EnvKey              = "env"
	PermissionsKey      = "permissions"
	AuthTokenKey        = "ANTHROPIC_AUTH_TOKEN"
	BaseURLKey          = "ANTHROPIC_BASE_URL"
	DisableTrafficKey   = "CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC"
	PrimaryAPIKeyKey    = "primaryApiKey"
	OpenAIAPIKeyKey     = "OPENAI_API_KEY"
	ModelProvidersKey   = "model_providers"
	EditorAPIBaseKey    = "chatgpt.apiBase"
	EditorConfigKey     = "chatgpt.config"
	EditorAuthMethodKey = "preferred_auth_method"
)

var agentConfigTopKeys = []string{"model_provider", "model", "model_reasoning_effort", "disable_response_storage"}

var agentProviderKeys = []string{"name", "base_url", "wire_api", "env_key", "requires_openai_auth"}

// ManagedField is a key the tool owns. Position is its canonical place in
// the rendered document.
type ManagedField struct {
	Path     []string
	Position int
}

func (f ManagedField) String() string { return strings.Join(f.Path, ".") }

type kindInfo struct {
	format   Format
	textual  bool
	managed  [][]string
	nestedOn func(path []string) bool
}

var kinds = map[Kind]kindInfo{
	AssistantSettings: {
		format: FormatJSON,
		managed: [][]string{
			{EnvKey, AuthTokenKey},
			{EnvKey, BaseURLKey},
			{EnvKey, DisableTrafficKey},
			{PermissionsKey},
		},
		nestedOn: func(path []string) bool { return len(path) == 1 && path[0] == EnvKey },
	},
	AssistantExtension: {
		format:  FormatJSON,
		managed: [][]string{{PrimaryAPIKeyKey}},
	},
	AgentAuth: {
		format:  FormatJSON,
		managed: [][]string{{OpenAIAPIKeyKey}},
	},
	AgentConfig: {
		format:  FormatTOML,
		managed: agentConfigManaged(),
		nestedOn: func(path []string) bool {
			return path[0] == ModelProvidersKey && len(path) <= 2
		},
	},
	EditorSettings: {
		format:  FormatJSONC,
		textual: true,
		managed: [][]string{{EditorAPIBaseKey}, {EditorConfigKey, EditorAuthMethodKey}},
	},
}

func agentConfigManaged() [][]string {
	var out [][]string
	for _, k := range agentConfigTopKeys {
		out = append(out, []string{k})
	}
	for _, k := range agentProviderKeys {
		out = append(out, []string{ModelProvidersKey, "<name>", k})
	}
	return out
}

// Kinds lists every document kind in a stable order.
func Kinds() []Kind {
	return []Kind{AssistantSettings, AssistantExtension, AgentAuth, AgentConfig, EditorSettings}
}

// ParseKind accepts a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if _, ok := kinds[k]; !ok {
		names := make([]string, 0, len(kinds))
		for _, kk := range Kinds() {
			names = append(names, string(kk))
		}
		return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q (want one of %s)", s, strings.Join(names, ", "))}
	}
	return k, nil
}

func (k Kind) info() (kindInfo, error) {
	info, ok := kinds[k]
	if !ok {
		return kindInfo{}, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", string(k))}
	}
	return info, nil
}

// Format reports the syntax of the document.
func (k Kind) Format() Format { return kinds[k].format }

// Textual reports whether the document is edited by text surgery instead of
// being re-serialized.
func (k Kind) Textual() bool { return kinds[k].textual }

// ManagedFields lists the fields the kind owns, in canonical order.
func (k Kind) ManagedFields() []ManagedField {
	info := kinds[k]
	out := make([]ManagedField, len(info.managed))
	for i, p := range info.managed {
		out[i] = ManagedField{Path: append([]string(nil), p...), Position: i}
	}
	return out
}

// ProviderProfile describes the agent's model provider table.
type ProviderProfile struct {
	Name                   string
	BaseURL                string
	WireAPI                string
	EnvKey                 string
	RequiresOpenAIAuth     bool
	Model                  string
	ReasoningEffort        string
	DisableResponseStorage bool
}

// DefaultProviderProfile is the stock provider setup.
func DefaultProviderProfile() ProviderProfile {
	return ProviderProfile{
		Name:                   "88code",
		BaseURL:                "https://88code.org/openai/v1",
		WireAPI:                "responses",
		EnvKey:                 "key88",
		RequiresOpenAIAuth:     true,
		Model:                  "gpt-5-codex",
		ReasoningEffort:        "high",
		DisableResponseStorage: true,
	}
}

// EditorProfile holds the editor extension settings.
type EditorProfile struct {
	APIBase             string
	PreferredAuthMethod string
}

func DefaultEditorProfile() EditorProfile {
	return EditorProfile{
		APIBase:             "https://88code.org/openai/v1",
		PreferredAuthMethod: "apikey",
	}
}

// Update carries the managed values of a basic update. Only the fields the
// kind uses are read.
type Update struct {
	APIKey   string
	BaseURL  string
	Provider ProviderProfile
	Editor   EditorProfile
}

// ValidateUpdate rejects blank required values for kind.
func ValidateUpdate(kind Kind, u Update) error {
	if _, err := kind.info(); err != nil {
		return err
	}
	type req struct{ field, value string }
	var reqs []req
	switch kind {
	case AssistantSettings, AssistantExtension:
		reqs = []req{{"api key", u.APIKey}, {"base url", u.BaseURL}}
	case AgentAuth:
		reqs = []req{{"api key", u.APIKey}}
	case AgentConfig:
		reqs = []req{
			{"provider name", u.Provider.Name},
			{"provider base url", u.Provider.BaseURL},
			{"model", u.Provider.Model},
		}
	case EditorSettings:
		reqs = []req{
			{"editor api base", u.Editor.APIBase},
			{"editor auth method", u.Editor.PreferredAuthMethod},
		}
	}
	for _, r := range reqs {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "must not be empty"}
		}
	}
	return nil
}
