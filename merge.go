package cfgedit

import (
	"strings"
)

// Merge applies a basic update to the existing document text and returns the
// new text. A nil or corrupt existing document is treated as empty. Keys the
// kind does not manage are carried through unchanged.
func Merge(kind Kind, existing []byte, u Update) (string, error) {
	info, err := kind.info()
	if err != nil {
		return "", err
	}
	if err := ValidateUpdate(kind, u); err != nil {
		return "", err
	}
	if info.textual {
		return Patch(string(existing), EditorSpecs(u.Editor))
	}

	cur := tolerantTable(info.format, existing)
	var out *Table
	switch kind {
	case AssistantSettings:
		out = mergeAssistantSettings(cur, u)
	case AssistantExtension:
		out = leadWith(cur, Entry{Key: PrimaryAPIKeyKey, Value: NewString(u.APIKey)})
	case AgentAuth:
		out = leadWith(cur, Entry{Key: OpenAIAPIKeyKey, Value: NewString(u.APIKey)})
	case AgentConfig:
		out = mergeAgentConfig(cur, u.Provider)
	}
	return render(info.format, out)
}

// MergeAdvanced overlays a caller-supplied replacement document onto the
// existing one. Incoming keys win, absent keys are kept, new keys append.
// A blank replacement is a ValidationError and a malformed one a ParseError.
func MergeAdvanced(kind Kind, existing []byte, replacement string) (string, error) {
	info, err := kind.info()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(replacement) == "" {
		return "", &ValidationError{Field: "document", Message: "replacement document must not be empty"}
	}
	repl, err := parseTable(info.format, "", []byte(replacement))
	if err != nil {
		return "", err
	}

	if info.textual {
		specs := make([]KeySpec, 0, repl.Len())
		for _, e := range repl.Entries() {
			specs = append(specs, KeySpec{Key: e.Key, Value: e.Value})
		}
		return Patch(string(existing), specs)
	}

	cur := tolerantTable(info.format, existing)
	overlay(cur, repl, nil, info.nestedOn)
	return render(info.format, cur)
}

// tolerantTable decodes an existing document. Absent or unreadable input
// yields an empty table.
func tolerantTable(format Format, existing []byte) *Table {
	if existing == nil {
		return NewTable()
	}
	t, err := parseTable(format, "", existing)
	if err != nil {
		return NewTable()
	}
	return t
}

func render(format Format, t *Table) (string, error) {
	if format == FormatTOML {
		return EncodeTOML(t)
	}
	return EncodeJSON(TableOf(t)), nil
}

// overlay copies src into dst key by key. Where deep reports true for a key
// path and both sides hold tables, the tables are merged instead of replaced.
func overlay(dst, src *Table, path []string, deep func(path []string) bool) {
	for _, e := range src.Entries() {
		p := childPath(path, e.Key)
		if deep != nil && deep(p) {
			dt, dok := dst.Table(e.Key)
			st, sok := e.Value.AsTable()
			if dok && sok {
				overlay(dt, st, p, deep)
				continue
			}
		}
		dst.Set(e.Key, e.Value.Clone())
	}
}

// leadWith returns a table holding managed first, then every other entry of
// cur in its original order.
func leadWith(cur *Table, managed ...Entry) *Table {
	out := TableFrom(managed...)
	for _, e := range cur.Entries() {
		if !out.Has(e.Key) {
			out.Set(e.Key, e.Value)
		}
	}
	return out
}

func mergeAssistantSettings(cur *Table, u Update) *Table {
	oldEnv, _ := cur.Table(EnvKey)
	env := leadWith(oldEnv,
		Entry{Key: AuthTokenKey, Value: NewString(u.APIKey)},
		Entry{Key: BaseURLKey, Value: NewString(u.BaseURL)},
		Entry{Key: DisableTrafficKey, Value: NewString("1")},
	)

	perms, ok := cur.Get(PermissionsKey)
	if !ok {
		perms = TableOf(TableFrom(
			Entry{Key: "allow", Value: NewArray()},
			Entry{Key: "deny", Value: NewArray()},
		))
	}
	return leadWith(cur,
		Entry{Key: EnvKey, Value: TableOf(env)},
		Entry{Key: PermissionsKey, Value: perms},
	)
}

func mergeAgentConfig(cur *Table, p ProviderProfile) *Table {
	out := TableFrom(
		Entry{Key: "model_provider", Value: NewString(p.Name)},
		Entry{Key: "model", Value: NewString(p.Model)},
		Entry{Key: "model_reasoning_effort", Value: NewString(p.ReasoningEffort)},
		Entry{Key: "disable_response_storage", Value: NewBool(p.DisableResponseStorage)},
	)

	oldProviders, _ := cur.Table(ModelProvidersKey)
	oldProvider, _ := oldProviders.Table(p.Name)
	provider := leadWith(oldProvider,
		Entry{Key: "name", Value: NewString(p.Name)},
		Entry{Key: "base_url", Value: NewString(p.BaseURL)},
		Entry{Key: "wire_api", Value: NewString(p.WireAPI)},
		Entry{Key: "env_key", Value: NewString(p.EnvKey)},
		Entry{Key: "requires_openai_auth", Value: NewBool(p.RequiresOpenAIAuth)},
	)
	providers := leadWith(oldProviders, Entry{Key: p.Name, Value: TableOf(provider)})

	// plain extras, then the provider tables, then other sections
	var sections []Entry
	for _, e := range cur.Entries() {
		if out.Has(e.Key) || e.Key == ModelProvidersKey {
			continue
		}
		if isTOMLSection(e.Value) {
			sections = append(sections, e)
			continue
		}
		out.Set(e.Key, e.Value)
	}
	out.Set(ModelProvidersKey, TableOf(providers))
	for _, e := range sections {
		out.Set(e.Key, e.Value)
	}
	return out
}

// Classify splits the top-level keys of t into those kind manages and the
// pass-through rest, both in document order.
func Classify(kind Kind, t *Table) (managed, extras []string) {
	owned := map[string]bool{}
	for _, p := range kinds[kind].managed {
		owned[p[0]] = true
	}
	for _, k := range t.Keys() {
		if owned[k] {
			managed = append(managed, k)
		} else {
			extras = append(extras, k)
		}
	}
	return managed, extras
}
