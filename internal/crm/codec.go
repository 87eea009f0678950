package crm

import (
	"fmt"
	"strings"
)

// Variant ties one enum value to its API wire string and its display label.
type Variant[E comparable] struct {
	Value E
	Wire  string
	Label string
}

// Codec translates an enum to and from the API's wire strings. Decoding also
// accepts the display label because older API responses echo labels back.
type Codec[E comparable] struct {
	field    string
	variants []Variant[E]
	byValue  map[E]Variant[E]
	byWire   map[string]E
}

// NewCodec builds a codec and panics on duplicate values, wires or labels so
// that a bad lookup table fails at init rather than silently mistranslating.
func NewCodec[E comparable](field string, variants ...Variant[E]) *Codec[E] {
	c := &Codec[E]{
		field:    field,
		variants: variants,
		byValue:  make(map[E]Variant[E], len(variants)),
		byWire:   make(map[string]E, len(variants)*2),
	}
	for _, v := range variants {
		if _, dup := c.byValue[v.Value]; dup {
			panic(fmt.Sprintf("crm: %s codec: duplicate value %v", field, v.Value))
		}
		c.byValue[v.Value] = v
		for _, key := range []string{normalizeWire(v.Wire), normalizeWire(v.Label)} {
			if prev, dup := c.byWire[key]; dup && prev != v.Value {
				panic(fmt.Sprintf("crm: %s codec: duplicate wire/label %q", field, key))
			}
			c.byWire[key] = v.Value
		}
	}
	return c
}

// Field returns the field name the codec translates.
func (c *Codec[E]) Field() string { return c.field }

// Values returns every known value in declaration order.
func (c *Codec[E]) Values() []E {
	out := make([]E, len(c.variants))
	for i, v := range c.variants {
		out[i] = v.Value
	}
	return out
}

// Encode returns the wire string for v.
func (c *Codec[E]) Encode(v E) (string, error) {
	variant, ok := c.byValue[v]
	if !ok {
		return "", fmt.Errorf("%s: no wire value for %v", c.field, v)
	}
	return variant.Wire, nil
}

// Decode parses a wire string or display label.
func (c *Codec[E]) Decode(s string) (E, error) {
	if v, ok := c.byWire[normalizeWire(s)]; ok {
		return v, nil
	}
	var zero E
	return zero, fmt.Errorf("%s: unknown value %q", c.field, s)
}

// ToWire maps a label or wire string to the wire string.
func (c *Codec[E]) ToWire(s string) (string, bool) {
	v, err := c.Decode(s)
	if err != nil {
		return "", false
	}
	variant := c.byValue[v]
	return variant.Wire, true
}

// Labels returns every display label in declaration order.
func (c *Codec[E]) Labels() []string {
	out := make([]string, len(c.variants))
	for i, v := range c.variants {
		out[i] = v.Label
	}
	return out
}

// Label returns the display label for v, or "" when v is not a known value.
func (c *Codec[E]) Label(v E) string {
	return c.byValue[v].Label
}

// Next returns the value after v in declaration order, wrapping around.
func (c *Codec[E]) Next(v E) E {
	for i, variant := range c.variants {
		if variant.Value == v {
			return c.variants[(i+1)%len(c.variants)].Value
		}
	}
	return c.variants[0].Value
}

// WireTranslator is the type-erased view of a Codec used when only strings are
// at hand, such as filter values bound for a query string.
type WireTranslator interface {
	Field() string
	ToWire(s string) (string, bool)
	Labels() []string
}

func normalizeWire(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
