package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

func TestValueKindExclusivity(t *testing.T) {
	var typedNil *PrimitiveValue

	tests := []struct {
		name     string
		value    Value
		kind     ValueKind
		nullable bool
	}{
		{"absent", nil, KindNone, true},
		{"typed nil primitive", typedNil, KindNone, true},
		{"null primitive", NewNullPrimitive(edm.String), KindPrimitive, true},
		{"primitive", MustPrimitive(edm.Int32, 7), KindPrimitive, false},
		{"complex", NewComplex("Sales.Address"), KindComplex, false},
		{"empty collection", NewCollection("Edm.String"), KindCollection, false},
		{"enum", NewEnum("Sales.Color", "Red"), KindEnum, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Kind(tt.value))

			active := 0
			for _, is := range []bool{IsPrimitive(tt.value), IsComplex(tt.value), IsCollection(tt.value), IsEnum(tt.value)} {
				if is {
					active++
				}
			}
			if tt.kind == KindNone {
				assert.Equal(t, 0, active)
			} else {
				assert.Equal(t, 1, active, "exactly one kind must be active")
			}

			assert.Equal(t, tt.nullable, HasNullValue(tt.value))
			if HasNullValue(tt.value) {
				assert.False(t, HasPrimitiveValue(tt.value))
				assert.False(t, HasComplexValue(tt.value))
				assert.False(t, HasCollectionValue(tt.value))
				assert.False(t, HasEnumValue(tt.value))
			}
		})
	}
}

func TestHasValuePredicates(t *testing.T) {
	assert.True(t, HasPrimitiveValue(MustPrimitive(edm.String, "x")))
	assert.True(t, HasComplexValue(NewComplex("T")))
	assert.True(t, HasCollectionValue(NewCollection("Edm.Int32")))
	assert.True(t, HasEnumValue(NewEnum("T", "A")))
	assert.False(t, HasComplexValue(MustPrimitive(edm.String, "x")))
}

func TestAsAccessors(t *testing.T) {
	p, ok := AsPrimitive(MustPrimitive(edm.Int64, 3))
	require.True(t, ok)
	assert.Equal(t, int64(3), p.Raw())

	_, ok = AsComplex(p)
	assert.False(t, ok)

	c, ok := AsCollection(NewCollection("Edm.Int32", MustPrimitive(edm.Int32, 1)))
	require.True(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Collection(Edm.Int32)", c.TypeName())

	e, ok := AsEnum(NewEnum("Sales.Color", "Blue"))
	require.True(t, ok)
	assert.Equal(t, "Blue", e.Member)
}

func TestNewPrimitive(t *testing.T) {
	v, err := NewPrimitive(edm.Int16, "12")
	require.NoError(t, err)
	assert.Equal(t, int16(12), v.Raw())
	assert.Equal(t, "Edm.Int16", v.TypeName())
	assert.Equal(t, "12", v.String())

	_, err = NewPrimitive(edm.Int16, "twelve")
	assert.Error(t, err)

	assert.Equal(t, "null", NewNullPrimitive(edm.Int16).String())
	assert.Panics(t, func() { MustPrimitive(edm.Byte, 1000) })
}

func TestComplexValueLinks(t *testing.T) {
	c := NewComplex("Sales.Address")
	nav := NewLink(LinkTypeEntityNavigation, "Country", "Countries('DE')")

	added, err := c.AddLink(nav)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.AddLink(NewLink(LinkTypeEntityNavigation, "Country", "Countries('DE')"))
	require.NoError(t, err)
	assert.False(t, added, "duplicate add must be a no-op")
	assert.Len(t, c.NavigationLinks(), 1)

	added, err = c.AddLink(NewLink(LinkTypeAssociation, "Country", "Countries('DE')/$ref"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, c.AssociationLinks(), 1)

	_, err = c.AddLink(NewLink(LinkTypeMediaEdit, "Photo", "Photo/$value"))
	assert.ErrorIs(t, err, ErrMediaLinkOnComplex)

	added, err = c.AddLink(NewLink(LinkTypeUnknown, "X", "x"))
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, c.RemoveLink(nav))
	assert.Empty(t, c.NavigationLinks())
}

func TestComplexValueProperties(t *testing.T) {
	c := NewComplex("Sales.Address",
		NewProperty("City", MustPrimitive(edm.String, "Berlin")),
		NewProperty("City", MustPrimitive(edm.String, "Paris")),
	)
	require.Len(t, c.Properties(), 1)
	city, ok := c.Property("City")
	require.True(t, ok)
	assert.Equal(t, "Berlin", city.PrimitiveValue().Raw())
	assert.False(t, c.AddProperty(NewProperty("City", nil)))
	assert.True(t, c.AddProperty(NewProperty("Zip", nil)))
}

func TestPropertyPredicates(t *testing.T) {
	null := NewProperty("Name", NewNullPrimitive(edm.String))
	assert.True(t, null.IsNull())
	assert.False(t, null.HasPrimitiveValue())

	absent := NewProperty("Name", nil)
	assert.True(t, absent.IsNull())

	prim := NewProperty("Name", MustPrimitive(edm.String, "Ann"))
	assert.True(t, prim.HasPrimitiveValue())
	assert.False(t, prim.HasComplexValue())

	assert.True(t, NewProperty("Addr", NewComplex("T")).HasComplexValue())
	assert.True(t, NewProperty("Tags", NewCollection("Edm.String")).HasCollectionValue())
	assert.True(t, NewProperty("Color", NewEnum("T", "Red")).HasEnumValue())
	assert.Nil(t, NewProperty("Color", NewEnum("T", "Red")).PrimitiveValue())
}
