package cfgedit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
)

// EncodeJSON pretty-prints v with two-space indentation and a final newline.
func EncodeJSON(v Value) string {
	return string(appendJSON(nil, v, "", "  ", 0)) + "\n"
}

// appendJSON follows json.MarshalIndent layout; an empty indent means compact.
func appendJSON(buf []byte, v Value, prefix, indent string, level int) []byte {
	switch v.kind {
	case NullValue:
		return append(buf, "null"...)
	case StringValue, DateTimeValue:
		return appendJSONString(buf, v.str)
	case IntegerValue:
		return strconv.AppendInt(buf, v.i, 10)
	case FloatValue:
		return appendJSONFloat(buf, v.f)
	case BoolValue:
		return strconv.AppendBool(buf, v.b)
	case ArrayValue:
		if len(v.arr) == 0 {
			return append(buf, "[]"...)
		}
		buf = append(buf, '[')
		for i, item := range v.arr {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = jsonNewline(buf, prefix, indent, level+1)
			buf = appendJSON(buf, item, prefix, indent, level+1)
		}
		buf = jsonNewline(buf, prefix, indent, level)
		return append(buf, ']')
	case TableValue:
		if v.tbl.Len() == 0 {
			return append(buf, "{}"...)
		}
		buf = append(buf, '{')
		for i, e := range v.tbl.Entries() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = jsonNewline(buf, prefix, indent, level+1)
			buf = appendJSONString(buf, e.Key)
			buf = append(buf, ':')
			if indent != "" {
				buf = append(buf, ' ')
			}
			buf = appendJSON(buf, e.Value, prefix, indent, level+1)
		}
		buf = jsonNewline(buf, prefix, indent, level)
		return append(buf, '}')
	}
	return buf
}

func jsonNewline(buf []byte, prefix, indent string, level int) []byte {
	if indent == "" {
		return buf
	}
	buf = append(buf, '\n')
	buf = append(buf, prefix...)
	for i := 0; i < level; i++ {
		buf = append(buf, indent...)
	}
	return buf
}

const hexDigits = "0123456789abcdef"

func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			buf = append(buf, '\\', c)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			if c < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				continue
			}
			buf = append(buf, c)
		}
	}
	return append(buf, '"')
}

// appendFloat keeps a decimal point on integral values so the float kind
// survives a re-parse.
func appendFloat(buf []byte, f float64) []byte {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, format, -1, 64)
	if format == 'e' {
		// e-07 -> e-7
		n := len(buf)
		if n-start >= 4 && buf[n-4] == 'e' && buf[n-3] == '-' && buf[n-2] == '0' {
			buf[n-2] = buf[n-1]
			buf = buf[:n-1]
		}
		return buf
	}
	if !strings.ContainsRune(string(buf[start:]), '.') {
		buf = append(buf, '.', '0')
	}
	return buf
}

func appendJSONFloat(buf []byte, f float64) []byte {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return append(buf, "null"...)
	}
	return appendFloat(buf, f)
}

// ----- TOML -----

// EncodeTOML renders t as a TOML document. Plain values of a table come
// first, then its sub-tables and arrays of tables as sections, each group in
// table order.
func EncodeTOML(t *Table) (string, error) {
	var e tomlEncoder
	if err := e.section(nil, t, false); err != nil {
		return "", err
	}
	return e.b.String(), nil
}

type tomlEncoder struct {
	b strings.Builder
}

func (e *tomlEncoder) section(path []string, t *Table, arrayItem bool) error {
	var inline, nested []Entry
	for _, en := range t.Entries() {
		if isTOMLSection(en.Value) {
			nested = append(nested, en)
		} else {
			inline = append(inline, en)
		}
	}

	if len(path) > 0 && (arrayItem || len(inline) > 0 || len(nested) == 0) {
		if e.b.Len() > 0 {
			e.b.WriteString("\n")
		}
		if arrayItem {
			e.b.WriteString("[[" + tomlKeyPath(path) + "]]\n")
		} else {
			e.b.WriteString("[" + tomlKeyPath(path) + "]\n")
		}
	}

	for _, en := range inline {
		s, err := tomlInline(en.Value, childPath(path, en.Key))
		if err != nil {
			return err
		}
		e.b.WriteString(tomlKey(en.Key))
		e.b.WriteString(" = ")
		e.b.WriteString(s)
		e.b.WriteString("\n")
	}

	for _, en := range nested {
		p := childPath(path, en.Key)
		if tbl, ok := en.Value.AsTable(); ok {
			if err := e.section(p, tbl, false); err != nil {
				return err
			}
			continue
		}
		items, _ := en.Value.AsArray()
		for _, item := range items {
			tbl, _ := item.AsTable()
			if err := e.section(p, tbl, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func isTOMLSection(v Value) bool {
	switch v.kind {
	case TableValue:
		return true
	case ArrayValue:
		if len(v.arr) == 0 {
			return false
		}
		for _, item := range v.arr {
			if item.kind != TableValue {
				return false
			}
		}
		return true
	}
	return false
}

func tomlInline(v Value, path []string) (string, error) {
	switch v.kind {
	case NullValue:
		return "", fmt.Errorf("cfgedit: TOML cannot represent null at %s", tomlKeyPath(path))
	case StringValue:
		return tomlQuote(v.str), nil
	case DateTimeValue:
		return v.str, nil
	case IntegerValue:
		return strconv.FormatInt(v.i, 10), nil
	case FloatValue:
		switch {
		case math.IsNaN(v.f):
			return "nan", nil
		case math.IsInf(v.f, 1):
			return "inf", nil
		case math.IsInf(v.f, -1):
			return "-inf", nil
		}
		return string(appendFloat(nil, v.f)), nil
	case BoolValue:
		return strconv.FormatBool(v.b), nil
	case ArrayValue:
		parts := make([]string, 0, len(v.arr))
		for _, item := range v.arr {
			s, err := tomlInline(item, path)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case TableValue:
		if v.tbl.Len() == 0 {
			return "{}", nil
		}
		parts := make([]string, 0, v.tbl.Len())
		for _, en := range v.tbl.Entries() {
			s, err := tomlInline(en.Value, childPath(path, en.Key))
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(en.Key)+" = "+s)
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	}
	return "", fmt.Errorf("cfgedit: unsupported value kind %s", v.kind)
}

func tomlKeyPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = tomlKey(p)
	}
	return strings.Join(parts, ".")
}

func tomlKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return tomlQuote(k)
		}
	}
	return k
}

func tomlQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ----- YAML -----

// EncodeYAML renders v as YAML through an ordered MapSlice so key order
// survives.
func EncodeYAML(v Value) ([]byte, error) {
	out, err := gyaml.Marshal(toYAML(v))
	if err != nil {
		return nil, fmt.Errorf("cfgedit: failed to encode YAML: %w", err)
	}
	return out, nil
}

func toYAML(v Value) interface{} {
	switch v.kind {
	case StringValue, DateTimeValue:
		return v.str
	case IntegerValue:
		return v.i
	case FloatValue:
		return v.f
	case BoolValue:
		return v.b
	case ArrayValue:
		items := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			items[i] = toYAML(item)
		}
		return items
	case TableValue:
		ms := make(gyaml.MapSlice, 0, v.tbl.Len())
		for _, e := range v.tbl.Entries() {
			ms = append(ms, gyaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return ms
	}
	return nil
}
