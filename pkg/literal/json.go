package literal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Records are encoded as JSON objects with exactly these keys.
const (
	recordTypeKey   = "$type"
	recordArgsKey   = "args"
	recordKwargsKey = "kwargs"
)

// MarshalJSON encodes v as JSON, preserving mapping order. Non-finite
// numbers cannot be encoded and return an error.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		if math.IsInf(v.numVal, 0) || math.IsNaN(v.numVal) {
			return fmt.Errorf("unsupported number %v", v.numVal)
		}
		buf.WriteString(formatNumber(v.numVal))
	case KindString:
		writeJSONString(buf, v.strVal)
	case KindSequence:
		return writeJSONArray(buf, v.items)
	case KindMapping:
		return writeJSONObject(buf, v.mapping)
	case KindRecord:
		buf.WriteByte('{')
		writeJSONString(buf, recordTypeKey)
		buf.WriteByte(':')
		writeJSONString(buf, v.recordVal.Type)
		buf.WriteByte(',')
		writeJSONString(buf, recordArgsKey)
		buf.WriteByte(':')
		if err := writeJSONArray(buf, v.recordVal.Positional); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeJSONString(buf, recordKwargsKey)
		buf.WriteByte(':')
		if err := writeJSONObject(buf, v.recordVal.Fields); err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONArray(buf *bytes.Buffer, items []Value) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeJSONObject(buf *bytes.Buffer, m *Mapping) error {
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(buf, e.Key)
		buf.WriteByte(':')
		if err := writeJSON(buf, e.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

// UnmarshalJSON decodes JSON into v, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// DecodeJSON decodes exactly one JSON document into a Value. Object key order
// is preserved and objects in record form become records again.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("number %s: %w", t, err)
		}
		return Number(n), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Sequence(items...), nil
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key %v is not a string", keyTok)
				}
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			if r := recordFromMapping(m); r != nil {
				return RecordValue(r), nil
			}
			return MappingValue(m), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// recordFromMapping recognizes the object form written by MarshalJSON.
func recordFromMapping(m *Mapping) *Record {
	if m.Len() != 3 {
		return nil
	}
	typ, ok := m.Get(recordTypeKey)
	if !ok || typ.kind != KindString {
		return nil
	}
	args, ok := m.Get(recordArgsKey)
	if !ok || args.kind != KindSequence {
		return nil
	}
	kwargs, ok := m.Get(recordKwargsKey)
	if !ok || kwargs.kind != KindMapping {
		return nil
	}
	return &Record{Type: typ.strVal, Positional: args.items, Fields: kwargs.mapping}
}
