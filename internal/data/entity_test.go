package data

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

func TestEntityProperties(t *testing.T) {
	e := NewEntity("Sales.Customer",
		NewProperty("ID", MustPrimitive(edm.Int32, 1)),
		NewProperty("Name", MustPrimitive(edm.String, "Ann")),
	)

	assert.False(t, e.AddProperty(NewProperty("Name", MustPrimitive(edm.String, "Bob"))))
	name, ok := e.Property("Name")
	require.True(t, ok)
	assert.Equal(t, "Ann", name.PrimitiveValue().Raw())

	e.SetProperty(NewProperty("Name", MustPrimitive(edm.String, "Bob")))
	name, _ = e.Property("Name")
	assert.Equal(t, "Bob", name.PrimitiveValue().Raw())
	assert.Len(t, e.Properties(), 2)

	assert.True(t, e.RemoveProperty("ID"))
	assert.False(t, e.RemoveProperty("ID"))
	assert.Equal(t, "Name", e.Properties()[0].Name)
}

func TestEntityLinkRouting(t *testing.T) {
	e := NewEntity("Sales.Customer")

	nav := NewLink(LinkTypeEntitySetNavigation, "Orders", "Customers(1)/Orders")
	assoc := NewLink(LinkTypeAssociation, "Orders", "Customers(1)/Orders/$ref")
	media := NewLink(LinkTypeMediaEdit, "Photo", "Customers(1)/Photo")
	binding := NewLink(LinkTypeEntityBinding, "Manager", "Employees(3)")

	assert.True(t, e.AddLink(nav))
	assert.True(t, e.AddLink(assoc))
	assert.True(t, e.AddLink(media))
	assert.True(t, e.AddLink(binding))
	assert.False(t, e.AddLink(NewLink(LinkTypeUnknown, "X", "x")))
	assert.False(t, e.AddLink(nil))

	assert.Len(t, e.NavigationLinks(), 2)
	assert.Len(t, e.AssociationLinks(), 1)
	assert.Len(t, e.MediaEditLinks(), 1)

	l, ok := e.NavigationLink("Orders")
	require.True(t, ok)
	assert.Same(t, nav, l)
	_, ok = e.AssociationLink("Orders")
	assert.True(t, ok)
	_, ok = e.MediaEditLink("Photo")
	assert.True(t, ok)
}

func TestEntityLinkIdempotence(t *testing.T) {
	e := NewEntity("Sales.Customer")
	link := NewLink(LinkTypeEntityNavigation, "Manager", "Employees(3)")

	require.True(t, e.AddLink(link))
	before := append([]*Link(nil), e.NavigationLinks()...)

	assert.False(t, e.AddLink(link))
	assert.False(t, e.AddLink(NewLink(LinkTypeEntityNavigation, "Manager", "Employees(3)")))
	assert.Equal(t, before, e.NavigationLinks())

	assert.True(t, e.RemoveLink(link))
	assert.Empty(t, e.NavigationLinks())
	assert.False(t, e.RemoveLink(link))
}

func TestEntityOperations(t *testing.T) {
	e := NewEntity("Sales.Customer")
	target, _ := url.Parse("Customers(1)/Sales.Discount")
	e.AddOperation(&Operation{Metadata: "#Sales.Discount", Title: "Sales.Discount", Target: target, Kind: OperationAction})
	e.AddOperation(nil)

	require.Len(t, e.Operations(), 1)
	op, ok := e.Operation("Sales.Discount")
	require.True(t, ok)
	assert.Equal(t, OperationAction, op.Kind)
	_, ok = e.Operation("Missing")
	assert.False(t, ok)
}

func TestAnnotations(t *testing.T) {
	e := NewEntity("Sales.Customer")
	e.AddAnnotation("Core.Description", MustPrimitive(edm.String, "VIP"))
	ann, ok := e.Annotation("Core.Description")
	require.True(t, ok)
	assert.True(t, HasPrimitiveValue(ann.Value))
	assert.Len(t, e.Annotations(), 1)
	_, ok = e.Annotation("Core.Other")
	assert.False(t, ok)
}
