package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a decoded card field. Mappings remember the order their keys
// appeared in the source.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	seq    []Value
	keys   []string
	fields map[string]Value
}

// ErrTrailingData is returned when a document holds more than one value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// DecodeValue parses one JSON document into a Value.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, err
		}
		return Value{}, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	case bool:
		return Value{kind: Bool, b: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Value{kind: Number, n: f}, nil
	case string:
		return Value{kind: String, s: t}, nil
	case nil:
		return Value{kind: Null}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeMapping(dec *json.Decoder) (Value, error) {
	v := Value{kind: Mapping, fields: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("mapping key must be a string, got %v", tok)
		}
		field, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := v.fields[key]; !dup {
			v.keys = append(v.keys, key)
		}
		v.fields[key] = field
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeSequence(dec *json.Decoder) (Value, error) {
	v := Value{kind: Sequence}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("index %d: %w", len(v.seq), err)
		}
		v.seq = append(v.seq, item)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// AsString returns the string held by v, or def for any other kind.
func (v Value) AsString(def string) string {
	if v.kind != String {
		return def
	}
	return v.s
}

// AsBool returns the bool held by v, or def for any other kind.
func (v Value) AsBool(def bool) bool {
	if v.kind != Bool {
		return def
	}
	return v.b
}

// AsNumber returns the number held by v, or def for any other kind.
func (v Value) AsNumber(def float64) float64 {
	if v.kind != Number {
		return def
	}
	return v.n
}

// Items returns the elements of a sequence, nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != Sequence {
		return nil
	}
	return v.seq
}

// Keys returns mapping keys in source order.
func (v Value) Keys() []string {
	if v.kind != Mapping {
		return nil
	}
	return v.keys
}

// Field looks up key in a mapping.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// String renders v as compact JSON, keeping mapping order.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(v.b))
	case Number:
		b.WriteString(strconv.FormatFloat(v.n, 'f', -1, 64))
	case String:
		b.WriteString(strconv.Quote(v.s))
	case Sequence:
		b.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	case Mapping:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.fields[k].write(b)
		}
		b.WriteByte('}')
	}
}
