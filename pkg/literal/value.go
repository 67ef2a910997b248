package literal

import (
	"math"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Value is a decoded literal. The zero Value is Null.
type Value struct {
	kind Kind

	boolVal   bool
	numVal    float64
	strVal    string
	items     []Value
	mapping   *Mapping
	recordVal *Record
}

// MapEntry is one key/value pair of a Mapping.
type MapEntry struct {
	Key   string
	Value Value
}

// Mapping is an insertion-ordered string-keyed map. Setting an existing key
// replaces its value but keeps its position.
type Mapping struct {
	entries []MapEntry
	index   map[string]int
}

// Record is a constructor call: Name(positional..., key=value...).
type Record struct {
	Type       string
	Positional []Value
	Fields     *Mapping
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, numVal: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, strVal: s} }

// Sequence returns a sequence value holding items.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// MappingValue wraps m as a value. A nil mapping is treated as empty.
func MappingValue(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, mapping: m}
}

// RecordValue wraps r as a value.
func RecordValue(r *Record) Value {
	if r.Fields == nil {
		r.Fields = NewMapping()
	}
	if r.Positional == nil {
		r.Positional = []Value{}
	}
	return Value{kind: KindRecord, recordVal: r}
}

// Kind returns the type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.boolVal, v.kind == KindBool }

// Number returns the numeric payload.
func (v Value) Number() (float64, bool) { return v.numVal, v.kind == KindNumber }

// Str returns the string payload.
func (v Value) Str() (string, bool) { return v.strVal, v.kind == KindString }

// Items returns the elements of a sequence.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Mapping returns the mapping payload, or nil.
func (v Value) Mapping() *Mapping {
	if v.kind != KindMapping {
		return nil
	}
	return v.mapping
}

// Record returns the record payload, or nil.
func (v Value) Record() *Record {
	if v.kind != KindRecord {
		return nil
	}
	return v.recordVal
}

// Equal reports deep equality. Mapping order is not significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindNumber:
		return v.numVal == o.numVal || (math.IsNaN(v.numVal) && math.IsNaN(o.numVal))
	case KindString:
		return v.strVal == o.strVal
	case KindSequence:
		return equalItems(v.items, o.items)
	case KindMapping:
		return v.mapping.Equal(o.mapping)
	case KindRecord:
		a, b := v.recordVal, o.recordVal
		return a.Type == b.Type && equalItems(a.Positional, b.Positional) && a.Fields.Equal(b.Fields)
	}
	return false
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any. Records become maps with "$type", "args" and
// "kwargs" keys.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolVal
	case KindNumber:
		return v.numVal
	case KindString:
		return v.strVal
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		return v.mapping.Interface()
	case KindRecord:
		args := make([]any, len(v.recordVal.Positional))
		for i, item := range v.recordVal.Positional {
			args[i] = item.Interface()
		}
		return map[string]any{
			recordTypeKey:   v.recordVal.Type,
			recordArgsKey:   args,
			recordKwargsKey: v.recordVal.Fields.Interface(),
		}
	}
	return nil
}

// Text returns a display string for scalars: the string itself, numbers in
// shortest form, and true/false. Containers and null return "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.strVal
	case KindNumber:
		return formatNumber(v.numVal)
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	}
	return ""
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set stores value under key.
func (m *Mapping) Set(key string, value Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in insertion order.
func (m *Mapping) Entries() []MapEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.Len())
	for _, e := range m.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Equal reports whether both mappings hold equal values under the same keys.
func (m *Mapping) Equal(o *Mapping) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, e := range m.Entries() {
		ov, ok := o.Get(e.Key)
		if !ok || !e.Value.Equal(ov) {
			return false
		}
	}
	return true
}

// Interface converts the mapping into a map[string]any.
func (m *Mapping) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	for _, e := range m.Entries() {
		out[e.Key] = e.Value.Interface()
	}
	return out
}

// formatNumber uses the same shortest form as encoding/json.
func formatNumber(n float64) string {
	abs := math.Abs(n)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(n, 'e', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
