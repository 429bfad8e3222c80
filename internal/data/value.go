// Package data holds the in-memory representation of OData payloads: values,
// properties, entities, entity collections and delta payloads.
package data

import (
	"fmt"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

// ValueKind identifies which variant of Value is active.
type ValueKind int

const (
	// KindNone is reported for an absent (nil) value.
	KindNone ValueKind = iota
	KindPrimitive
	KindComplex
	KindCollection
	KindEnum
)

func (k ValueKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindComplex:
		return "complex"
	case KindCollection:
		return "collection"
	case KindEnum:
		return "enum"
	default:
		return "none"
	}
}

// Value is a sealed sum type; the only implementations are *PrimitiveValue,
// *ComplexValue, *CollectionValue and *EnumValue.
type Value interface {
	// Kind reports the active variant.
	Kind() ValueKind
	// TypeName returns the EDM type name of the value.
	TypeName() string
	value()
}

// Kind returns the variant of v, KindNone for a nil value.
func Kind(v Value) ValueKind {
	if isNil(v) {
		return KindNone
	}
	return v.Kind()
}

// isNil catches both a nil interface and a typed nil pointer.
func isNil(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *PrimitiveValue:
		return x == nil
	case *ComplexValue:
		return x == nil
	case *CollectionValue:
		return x == nil
	case *EnumValue:
		return x == nil
	}
	return false
}

// IsPrimitive reports whether v is a primitive value (null or not).
func IsPrimitive(v Value) bool { return Kind(v) == KindPrimitive }

// IsComplex reports whether v is a complex value.
func IsComplex(v Value) bool { return Kind(v) == KindComplex }

// IsCollection reports whether v is a collection value.
func IsCollection(v Value) bool { return Kind(v) == KindCollection }

// IsEnum reports whether v is an enum value.
func IsEnum(v Value) bool { return Kind(v) == KindEnum }

// HasNullValue is true iff v is absent or a primitive without a raw scalar.
func HasNullValue(v Value) bool {
	switch Kind(v) {
	case KindNone:
		return true
	case KindPrimitive:
		return v.(*PrimitiveValue).raw == nil
	case KindComplex, KindCollection, KindEnum:
		return false
	}
	return false
}

// HasPrimitiveValue reports a non-null primitive value.
func HasPrimitiveValue(v Value) bool { return !HasNullValue(v) && IsPrimitive(v) }

// HasComplexValue reports a non-null complex value.
func HasComplexValue(v Value) bool { return !HasNullValue(v) && IsComplex(v) }

// HasCollectionValue reports a non-null collection value.
func HasCollectionValue(v Value) bool { return !HasNullValue(v) && IsCollection(v) }

// HasEnumValue reports a non-null enum value.
func HasEnumValue(v Value) bool { return !HasNullValue(v) && IsEnum(v) }

// AsPrimitive returns v as a primitive value.
func AsPrimitive(v Value) (*PrimitiveValue, bool) {
	if !IsPrimitive(v) {
		return nil, false
	}
	return v.(*PrimitiveValue), true
}

// AsComplex returns v as a complex value.
func AsComplex(v Value) (*ComplexValue, bool) {
	if !IsComplex(v) {
		return nil, false
	}
	return v.(*ComplexValue), true
}

// AsCollection returns v as a collection value.
func AsCollection(v Value) (*CollectionValue, bool) {
	if !IsCollection(v) {
		return nil, false
	}
	return v.(*CollectionValue), true
}

// AsEnum returns v as an enum value.
func AsEnum(v Value) (*EnumValue, bool) {
	if !IsEnum(v) {
		return nil, false
	}
	return v.(*EnumValue), true
}

// PrimitiveValue is a raw scalar tagged with its EDM primitive kind.
type PrimitiveValue struct {
	Type edm.PrimitiveKind
	raw  interface{}
}

// NewPrimitive normalizes raw into the canonical representation of kind.
// A nil raw produces a null primitive.
func NewPrimitive(kind edm.PrimitiveKind, raw interface{}) (*PrimitiveValue, error) {
	normalized, err := edm.Normalize(kind, raw)
	if err != nil {
		return nil, err
	}
	return &PrimitiveValue{Type: kind, raw: normalized}, nil
}

// MustPrimitive is like NewPrimitive but panics on conversion errors.
func MustPrimitive(kind edm.PrimitiveKind, raw interface{}) *PrimitiveValue {
	v, err := NewPrimitive(kind, raw)
	if err != nil {
		panic(fmt.Sprintf("data: %v", err))
	}
	return v
}

// NewNullPrimitive creates a null value of the given kind.
func NewNullPrimitive(kind edm.PrimitiveKind) *PrimitiveValue {
	return &PrimitiveValue{Type: kind}
}

func (p *PrimitiveValue) Kind() ValueKind  { return KindPrimitive }
func (p *PrimitiveValue) TypeName() string { return p.Type.TypeName() }
func (p *PrimitiveValue) value()           {}

// Raw returns the normalized scalar, nil when null.
func (p *PrimitiveValue) Raw() interface{} {
	if p == nil {
		return nil
	}
	return p.raw
}

// IsNull reports whether the raw scalar is absent.
func (p *PrimitiveValue) IsNull() bool {
	return p == nil || p.raw == nil
}

// String renders the scalar via edm.FormatValue.
func (p *PrimitiveValue) String() string {
	if p.IsNull() {
		return "null"
	}
	return edm.FormatValue(p.Type, p.raw)
}

// EnumValue is a symbolic member of an enum type.
type EnumValue struct {
	Type   string
	Member string
}

// NewEnum creates an enum value.
func NewEnum(typeName, member string) *EnumValue {
	return &EnumValue{Type: typeName, Member: member}
}

func (e *EnumValue) Kind() ValueKind  { return KindEnum }
func (e *EnumValue) TypeName() string { return e.Type }
func (e *EnumValue) value()           {}

// CollectionValue is an ordered sequence of values sharing ElementType.
type CollectionValue struct {
	ElementType string
	Items       []Value
}

// NewCollection creates a collection of the given element type.
func NewCollection(elementType string, items ...Value) *CollectionValue {
	return &CollectionValue{ElementType: elementType, Items: items}
}

func (c *CollectionValue) Kind() ValueKind  { return KindCollection }
func (c *CollectionValue) TypeName() string { return "Collection(" + c.ElementType + ")" }
func (c *CollectionValue) value()           {}

// Add appends an item.
func (c *CollectionValue) Add(v Value) {
	c.Items = append(c.Items, v)
}

// Len returns the number of items.
func (c *CollectionValue) Len() int {
	return len(c.Items)
}
