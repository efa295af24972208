package cfgedit

import "fmt"

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	NullValue ValueKind = iota
	StringValue
	IntegerValue
	FloatValue
	BoolValue
	ArrayValue
	TableValue
	// DateTimeValue holds a TOML date/time literal verbatim.
	DateTimeValue
)

func (k ValueKind) String() string {
	switch k {
	case NullValue:
		return "null"
	case StringValue:
		return "string"
	case IntegerValue:
		return "integer"
	case FloatValue:
		return "float"
	case BoolValue:
		return "boolean"
	case ArrayValue:
		return "array"
	case TableValue:
		return "table"
	case DateTimeValue:
		return "datetime"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is one node of a configuration document. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	arr  []Value
	tbl  *Table
}

func Null() Value                  { return Value{} }
func NewString(s string) Value     { return Value{kind: StringValue, str: s} }
func NewInt(i int64) Value         { return Value{kind: IntegerValue, i: i} }
func NewFloat(f float64) Value     { return Value{kind: FloatValue, f: f} }
func NewBool(b bool) Value         { return Value{kind: BoolValue, b: b} }
func NewDateTime(lit string) Value { return Value{kind: DateTimeValue, str: lit} }

func NewArray(items ...Value) Value {
	return Value{kind: ArrayValue, arr: append([]Value{}, items...)}
}

// TableOf wraps t; a nil t becomes an empty table.
func TableOf(t *Table) Value {
	if t == nil {
		t = NewTable()
	}
	return Value{kind: TableValue, tbl: t}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == NullValue }

func (v Value) AsString() (string, bool) { return v.str, v.kind == StringValue }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == IntegerValue }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == FloatValue }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == BoolValue }
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == ArrayValue }
func (v Value) AsTable() (*Table, bool)  { return v.tbl, v.kind == TableValue }

// AsDateTime returns the TOML literal of a date/time value.
func (v Value) AsDateTime() (string, bool) { return v.str, v.kind == DateTimeValue }

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case ArrayValue:
		out := make([]Value, len(v.arr))
		for i := range v.arr {
			out[i] = v.arr[i].Clone()
		}
		return Value{kind: ArrayValue, arr: out}
	case TableValue:
		return Value{kind: TableValue, tbl: v.tbl.Clone()}
	default:
		return v
	}
}

// Equal reports structural equality. Table comparison is order-sensitive.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullValue:
		return true
	case StringValue, DateTimeValue:
		return v.str == o.str
	case IntegerValue:
		return v.i == o.i
	case FloatValue:
		return v.f == o.f
	case BoolValue:
		return v.b == o.b
	case ArrayValue:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case TableValue:
		return v.tbl.Equal(o.tbl)
	}
	return false
}

// String renders the value as compact JSON, for logs and debugging.
func (v Value) String() string {
	return string(appendJSON(nil, v, "", "", 0))
}

// MarshalJSON emits compact JSON preserving table order.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v, "", "", 0), nil
}

// Entry is one key/value pair of a Table.
type Entry struct {
	Key   string
	Value Value
}

// Table is an ordered association list with unique keys. Insertion order is
// kept; Set on an existing key replaces the value in place.
type Table struct {
	entries []Entry
}

func NewTable() *Table { return &Table{} }

// TableFrom builds a table from pairs; later duplicates overwrite in place.
func TableFrom(entries ...Entry) *Table {
	t := NewTable()
	for _, e := range entries {
		t.Set(e.Key, e.Value)
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns the entries in order. The slice must not be modified.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Index returns the position of key, or -1.
func (t *Table) Index(key string) int {
	if t == nil {
		return -1
	}
	for i := range t.entries {
		if t.entries[i].Key == key {
			return i
		}
	}
	return -1
}

func (t *Table) Has(key string) bool { return t.Index(key) >= 0 }

func (t *Table) Get(key string) (Value, bool) {
	if i := t.Index(key); i >= 0 {
		return t.entries[i].Value, true
	}
	return Value{}, false
}

// Table returns the nested table stored under key.
func (t *Table) Table(key string) (*Table, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsTable()
}

func (t *Table) Set(key string, v Value) {
	if i := t.Index(key); i >= 0 {
		t.entries[i].Value = v
		return
	}
	t.entries = append(t.entries, Entry{Key: key, Value: v})
}

func (t *Table) Delete(key string) bool {
	i := t.Index(key)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

func (t *Table) Clone() *Table {
	out := &Table{}
	if t == nil {
		return out
	}
	out.entries = make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out.entries[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
	}
	return out
}

func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i, e := range t.Entries() {
		oe := o.entries[i]
		if e.Key != oe.Key || !e.Value.Equal(oe.Value) {
			return false
		}
	}
	return true
}
