package cfgedit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// KeySpec is one top-level key to set in a JSONC document. When Before names
// a related key that is present while Key is not, Key is inserted right
// before it instead of at the end of the document.
type KeySpec struct {
	Key    string
	Value  Value
	Before string
}

// EditorSpecs returns the managed editor keys. Each names the other as its
// neighbor so a half-configured file gets the missing key next to the present
// one.
func EditorSpecs(p EditorProfile) []KeySpec {
	return []KeySpec{
		{Key: EditorAPIBaseKey, Value: NewString(p.APIBase), Before: EditorConfigKey},
		{
			Key:    EditorConfigKey,
			Value:  TableOf(TableFrom(Entry{Key: EditorAuthMethodKey, Value: NewString(p.PreferredAuthMethod)})),
			Before: EditorAPIBaseKey,
		},
	}
}

// Patch sets each spec's key in text and leaves every other byte alone:
// comments, ordering, whitespace and unrelated keys survive. Existing
// scalar values are replaced in place; existing object values are merged
// with the spec's table and re-rendered. Blank text is treated as an empty
// object.
func Patch(text string, specs []KeySpec) (string, error) {
	if strings.TrimSpace(Normalize(text)) == "" {
		text = "{\n}\n"
	}
	if _, err := validateObject(text); err != nil {
		return "", err
	}

	doc, err := scanObject(text)
	if err != nil {
		return "", err
	}
	unit := detectIndent(text)

	var (
		patches []patch
		seq     int
		tail    []KeySpec
	)
	add := func(p patch) {
		p.seq = seq
		seq++
		patches = append(patches, p)
	}

	for _, spec := range specs {
		if m, ok := doc.member(spec.Key); ok {
			data, err := renderMemberValue(text, m, spec.Value, lineIndent(text, m.keyStart), unit)
			if err != nil {
				return "", err
			}
			add(patch{start: m.valueStart, end: m.valueEnd, data: []byte(data)})
			continue
		}
		if spec.Before != "" {
			if n, ok := doc.member(spec.Before); ok {
				add(insertBefore(text, n, spec, unit))
				continue
			}
		}
		tail = append(tail, spec)
	}
	if len(tail) > 0 {
		for _, p := range appendAtEnd(text, doc, tail, unit) {
			add(p)
		}
	}

	out, ok := applyPatches([]byte(text), patches)
	if !ok {
		return "", fmt.Errorf("cfgedit: overlapping edits for %d keys", len(specs))
	}
	if _, err := validateObject(string(out)); err != nil {
		return "", fmt.Errorf("cfgedit: patched document is not valid: %w", err)
	}
	return string(out), nil
}

func validateObject(text string) (*Table, error) {
	v, err := ValidateJSONC(text)
	if err != nil {
		return nil, err
	}
	t, ok := v.AsTable()
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("top-level value must be an object, got %s", v.Kind())}
	}
	return t, nil
}

// ----- rendering -----

// renderValue renders v as it appears after "key": on a line indented by
// base.
func renderValue(v Value, base, unit string) string {
	return string(appendJSON(nil, v, base, unit, 0))
}

// renderMemberValue renders the replacement for an existing member. Objects
// on both sides are merged so inner keys the caller did not name survive.
func renderMemberValue(text string, m member, v Value, base, unit string) (string, error) {
	if st, ok := v.AsTable(); ok && text[m.valueStart] == '{' {
		old, err := ValidateJSONC(text[m.valueStart:m.valueEnd])
		if err != nil {
			return "", err
		}
		if ot, ok := old.AsTable(); ok {
			merged := ot.Clone()
			overlay(merged, st, nil, nil)
			v = TableOf(merged)
		}
	}
	return renderValue(v, base, unit), nil
}

func renderMember(spec KeySpec, base, unit string) string {
	return string(appendJSONString(nil, spec.Key)) + ": " + renderValue(spec.Value, base, unit)
}

// insertBefore places spec on its own line right above the neighbor n, or
// inline before it when n shares its line with other content.
func insertBefore(text string, n member, spec KeySpec, unit string) patch {
	ls := lineStart(text, n.keyStart)
	if strings.TrimSpace(text[ls:n.keyStart]) == "" {
		indent := text[ls:n.keyStart]
		return patch{start: ls, end: ls, data: []byte(indent + renderMember(spec, indent, unit) + ",\n")}
	}
	return patch{start: n.keyStart, end: n.keyStart, data: []byte(renderMember(spec, "", "") + ", ")}
}

// appendAtEnd inserts specs before the closing brace of the top-level object.
func appendAtEnd(text string, doc document, specs []KeySpec, unit string) []patch {
	var out []patch
	last, hasLast := doc.last()
	if hasLast && last.comma < 0 {
		out = append(out, patch{start: last.valueEnd, end: last.valueEnd, data: []byte(",")})
	}

	closeLine := lineStart(text, doc.close)
	ownLine := strings.TrimSpace(text[closeLine:doc.close]) == "" && closeLine > doc.open
	if !ownLine {
		parts := make([]string, len(specs))
		for i, s := range specs {
			parts[i] = renderMember(s, "", "")
		}
		data := strings.Join(parts, ", ")
		if hasLast {
			data = " " + data
		}
		return append(out, patch{start: doc.close, end: doc.close, data: []byte(data)})
	}

	indent := text[closeLine:doc.close] + unit
	if hasLast {
		ls := lineStart(text, last.keyStart)
		if strings.TrimSpace(text[ls:last.keyStart]) == "" && ls > doc.open {
			indent = text[ls:last.keyStart]
		}
	}
	var b strings.Builder
	for i, s := range specs {
		b.WriteString(indent)
		b.WriteString(renderMember(s, indent, unit))
		if i < len(specs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	return append(out, patch{start: closeLine, end: closeLine, data: []byte(b.String())})
}

func lineStart(text string, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}
	return strings.LastIndexByte(text[:pos], '\n') + 1
}

// lineIndent is the leading whitespace of the line holding pos, or "" when
// other content precedes pos on that line.
func lineIndent(text string, pos int) string {
	ls := lineStart(text, pos)
	if strings.TrimSpace(text[ls:pos]) != "" {
		return ""
	}
	return text[ls:pos]
}

// detectIndent guesses the indentation unit of a JSONC document from the
// greatest common divisor of its line indents. Tab-indented files use a tab.
func detectIndent(text string) string {
	indents := []int{}
	for _, ln := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(ln, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		if ln[0] == '\t' {
			return "\t"
		}
		if n := leadingSpaces(ln); n > 0 {
			indents = append(indents, n)
		}
	}
	if len(indents) == 0 {
		return "  "
	}
	result := indents[0]
	for i := 1; i < len(indents); i++ {
		result = gcd(result, indents[i])
		if result == 1 {
			break
		}
	}
	if result > 0 && result <= 8 {
		return strings.Repeat(" ", result)
	}
	return "  "
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// ----- patches -----

type patch struct {
	start int
	end   int
	data  []byte
	seq   int // stable order for equal start
}

// applyPatches splices patches into original. Destructive ranges must not
// overlap; insertions at the same offset keep their sequence order.
func applyPatches(original []byte, patches []patch) ([]byte, bool) {
	if len(patches) == 0 {
		return original, true
	}
	sort.SliceStable(patches, func(i, j int) bool {
		if patches[i].start == patches[j].start {
			if patches[i].end == patches[j].end {
				return patches[i].seq < patches[j].seq
			}
			return patches[i].end < patches[j].end
		}
		return patches[i].start < patches[j].start
	})
	for i := 1; i < len(patches); i++ {
		if patches[i-1].end > patches[i].start {
			return nil, false
		}
	}

	var out bytes.Buffer
	cursor := 0
	for _, p := range patches {
		if p.start < cursor || p.end < p.start || p.end > len(original) {
			return nil, false
		}
		out.Write(original[cursor:p.start])
		out.Write(p.data)
		cursor = p.end
	}
	out.Write(original[cursor:])
	return out.Bytes(), true
}

// ----- scanner -----

// member is one key/value pair of the top-level object, as byte offsets into
// the text. comma is the offset of the separating comma or -1.
type member struct {
	key        string
	keyStart   int
	keyEnd     int
	valueStart int
	valueEnd   int
	comma      int
}

type document struct {
	open    int
	close   int
	members []member
}

func (d document) member(key string) (member, bool) {
	for _, m := range d.members {
		if m.key == key {
			return m, true
		}
	}
	return member{}, false
}

func (d document) last() (member, bool) {
	if len(d.members) == 0 {
		return member{}, false
	}
	return d.members[len(d.members)-1], true
}

type scanState int

const (
	stateNormal scanState = iota
	stateKeyMatch
	stateObjectSkip
)

// scanObject walks the top-level object of an already validated JSONC text.
// In stateNormal it looks for the next key at depth one, stateKeyMatch reads
// the value that follows the colon, and stateObjectSkip steps over a nested
// object or array counting brace depth.
func scanObject(text string) (document, error) {
	doc := document{open: -1, close: -1}
	pos := skipInsignificant(text, 0)
	if pos >= len(text) || text[pos] != '{' {
		return doc, &ParseError{Message: "expected '{' at start of document"}
	}
	doc.open = pos
	pos++

	state := stateNormal
	var cur member
	depth := 0
	for pos < len(text) {
		switch state {
		case stateNormal:
			pos = skipInsignificant(text, pos)
			if pos >= len(text) {
				break
			}
			switch text[pos] {
			case '}':
				doc.close = pos
				return doc, nil
			case ',':
				pos++
			case '"':
				end := skipString(text, pos)
				key, err := ParseJSON([]byte(text[pos:end]))
				if err != nil {
					return doc, err
				}
				cur = member{comma: -1, keyStart: pos, keyEnd: end}
				cur.key, _ = key.AsString()
				pos = skipInsignificant(text, end)
				if pos >= len(text) || text[pos] != ':' {
					return doc, scanError(text, pos, "expected ':' after key")
				}
				pos++
				state = stateKeyMatch
			default:
				return doc, scanError(text, pos, fmt.Sprintf("unexpected %q", text[pos]))
			}

		case stateKeyMatch:
			pos = skipInsignificant(text, pos)
			if pos >= len(text) {
				break
			}
			cur.valueStart = pos
			switch text[pos] {
			case '{', '[':
				depth = 1
				pos++
				state = stateObjectSkip
				continue
			case '"':
				pos = skipString(text, pos)
			default:
				for pos < len(text) && !strings.ContainsRune(",}] \t\r\n/", rune(text[pos])) {
					pos++
				}
			}
			pos = doc.finish(text, &cur, pos)
			state = stateNormal

		case stateObjectSkip:
			switch c := text[pos]; {
			case c == '"':
				pos = skipString(text, pos)
			case c == '/' && pos+1 < len(text) && (text[pos+1] == '/' || text[pos+1] == '*'):
				pos = skipInsignificant(text, pos)
			case c == '{' || c == '[':
				depth++
				pos++
			case c == '}' || c == ']':
				depth--
				pos++
				if depth == 0 {
					pos = doc.finish(text, &cur, pos)
					state = stateNormal
				}
			default:
				pos++
			}
		}
	}
	return doc, scanError(text, len(text), "unterminated object")
}

// finish records the member ending at valueEnd and its separating comma.
func (d *document) finish(text string, m *member, valueEnd int) int {
	m.valueEnd = valueEnd
	next := skipInsignificant(text, valueEnd)
	if next < len(text) && text[next] == ',' {
		m.comma = next
	}
	d.members = append(d.members, *m)
	return valueEnd
}

// skipString returns the offset just past the string literal starting at pos.
func skipString(text string, pos int) int {
	escapeNext := false
	for i := pos + 1; i < len(text); i++ {
		switch {
		case escapeNext:
			escapeNext = false
		case text[i] == '\\':
			escapeNext = true
		case text[i] == '"':
			return i + 1
		}
	}
	return len(text)
}

func scanError(text string, pos int, msg string) *ParseError {
	line, col := lineCol([]byte(text), pos)
	return &ParseError{Line: line, Column: col, Message: msg}
}
