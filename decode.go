package cfgedit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ParseJSON decodes strict JSON keeping object key order.
func ParseJSON(data []byte) (Value, error) {
	// Unmarshal reports syntax errors with offsets into data; the token
	// decoder below only sees valid input.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, jsonParseError(data, 0, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, jsonParseError(data, dec.InputOffset(), err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			tbl := NewTable()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key must be a string, got %v", kt)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				tbl.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return TableOf(tbl), nil
		case '[':
			items := []Value{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: ArrayValue, arr: items}, nil
		}
		return Value{}, fmt.Errorf("unexpected %q", rune(t))
	case string:
		return NewString(t), nil
	case json.Number:
		return parseJSONNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func parseJSONNumber(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInt(i)
		}
	}
	// out-of-range literals saturate to ±Inf, which is still a float
	f, _ := strconv.ParseFloat(s, 64)
	return NewFloat(f)
}

func jsonParseError(data []byte, offset int64, err error) *ParseError {
	msg := err.Error()
	var se *json.SyntaxError
	if errors.As(err, &se) && se.Offset > 0 {
		// Offset counts the offending byte
		offset = se.Offset - 1
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || strings.Contains(msg, "unexpected end of JSON input") {
		msg = "unexpected end of input"
		if len(bytes.TrimSpace(data)) == 0 {
			msg = "empty document"
		}
	}
	line, col := lineCol(data, int(offset))
	return &ParseError{Line: line, Column: col, Message: msg, Err: err}
}

// lineCol converts a byte offset to 1-based line and column.
func lineCol(data []byte, offset int) (int, int) {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}
	line := 1 + bytes.Count(data[:offset], []byte("\n"))
	col := offset - bytes.LastIndexByte(data[:offset], '\n')
	return line, col
}

// ParseTOML decodes TOML keeping the order keys are defined in.
func ParseTOML(data []byte) (Value, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		pe := &ParseError{Message: err.Error(), Err: err}
		var terr toml.ParseError
		if errors.As(err, &terr) {
			pe.Line = terr.Position.Line
			pe.Message = terr.Message
		}
		return Value{}, pe
	}

	// md.Keys is in definition order but omits implicit parents such as
	// "a" for [a.b], so every prefix is indexed under its parent path.
	order := map[string][]string{}
	seen := map[string]struct{}{}
	for _, k := range md.Keys() {
		for i := 1; i <= len(k); i++ {
			parent := joinKeyPath(k[:i-1])
			id := parent + "\x01" + k[i-1]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			order[parent] = append(order[parent], k[i-1])
		}
	}
	return TableOf(tomlTable(raw, nil, order)), nil
}

func joinKeyPath(path []string) string { return strings.Join(path, "\x00") }

func tomlTable(m map[string]any, path []string, order map[string][]string) *Table {
	t := NewTable()
	for _, k := range order[joinKeyPath(path)] {
		if v, ok := m[k]; ok && !t.Has(k) {
			t.Set(k, tomlValue(v, childPath(path, k), order))
		}
	}
	var rest []string
	for k := range m {
		if !t.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		t.Set(k, tomlValue(m[k], childPath(path, k), order))
	}
	return t
}

func childPath(path []string, k string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = k
	return out
}

func tomlValue(v any, path []string, order map[string][]string) Value {
	switch x := v.(type) {
	case map[string]any:
		return TableOf(tomlTable(x, path, order))
	case []map[string]any:
		items := make([]Value, len(x))
		for i, m := range x {
			items[i] = TableOf(tomlTable(m, path, order))
		}
		return Value{kind: ArrayValue, arr: items}
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = tomlValue(e, path, order)
		}
		return Value{kind: ArrayValue, arr: items}
	case string:
		return NewString(x)
	case int64:
		return NewInt(x)
	case float64:
		return NewFloat(x)
	case bool:
		return NewBool(x)
	case time.Time:
		return NewDateTime(formatTOMLTime(x))
	default:
		return NewString(fmt.Sprint(x))
	}
}

// formatTOMLTime restores the literal form; the decoder marks local
// date/times with dedicated zones.
func formatTOMLTime(t time.Time) string {
	switch t.Location().String() {
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// parseTable decodes text in the given format and requires a top-level table.
func parseTable(format Format, path string, data []byte) (*Table, error) {
	var (
		v   Value
		err error
	)
	switch format {
	case FormatTOML:
		v, err = ParseTOML(data)
	case FormatJSONC:
		v, err = ValidateJSONC(string(data))
	default:
		v, err = ParseJSON(data)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	t, ok := v.AsTable()
	if !ok {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("top-level value must be an object, got %s", v.Kind())}
	}
	return t, nil
}
