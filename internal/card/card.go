package card

import (
	"errors"
	"fmt"
)

// ErrNotMapping is returned when a decoded record is not an object.
var ErrNotMapping = errors.New("card record is not a mapping")

// Card is one decoded card definition
type Card struct {
	Path   string // File the card was extracted from
	fields Value
}

// New wraps a decoded mapping as a Card.
func New(path string, v Value) (Card, error) {
	if v.Kind() != Mapping {
		return Card{}, fmt.Errorf("%w: got %s", ErrNotMapping, v.Kind())
	}
	return Card{Path: path, fields: v}, nil
}

// Decode parses a normalized record into a Card.
func Decode(path string, record []byte) (Card, error) {
	v, err := DecodeValue(record)
	if err != nil {
		return Card{}, err
	}
	return New(path, v)
}

// Name returns the card's name, or "" when the field is missing.
func (c Card) Name() string {
	return c.String("name", "")
}

// Fields returns the card's top-level field names in source order.
func (c Card) Fields() []string {
	return c.fields.Keys()
}

// Has reports whether field is present.
func (c Card) Has(field string) bool {
	_, ok := c.fields.Field(field)
	return ok
}

// Get returns the raw value of field.
func (c Card) Get(field string) (Value, bool) {
	return c.fields.Field(field)
}

// String returns field as a string, or def on absence or type mismatch.
func (c Card) String(field, def string) string {
	v, ok := c.fields.Field(field)
	if !ok {
		return def
	}
	return v.AsString(def)
}

// Bool returns field as a bool, or def on absence or type mismatch.
func (c Card) Bool(field string, def bool) bool {
	v, ok := c.fields.Field(field)
	if !ok {
		return def
	}
	return v.AsBool(def)
}

// Number returns field as a number, or def on absence or type mismatch.
func (c Card) Number(field string, def float64) float64 {
	v, ok := c.fields.Field(field)
	if !ok {
		return def
	}
	return v.AsNumber(def)
}

// Strings returns the string elements of a sequence field. Non-string
// elements are skipped; a missing or non-sequence field yields nil.
func (c Card) Strings(field string) []string {
	v, ok := c.fields.Field(field)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range v.Items() {
		if item.Kind() == String {
			out = append(out, item.AsString(""))
		}
	}
	return out
}
