package data

import "errors"

// ErrMediaLinkOnComplex is returned when a media-edit link is added to a complex value.
var ErrMediaLinkOnComplex = errors.New("complex values cannot have media links")

// ComplexValue is an ordered set of properties plus navigation and
// association links.
type ComplexValue struct {
	Annotatable

	Type             string
	properties       properties
	navigationLinks  linkList
	associationLinks linkList
}

// NewComplex creates an empty complex value of the given type.
func NewComplex(typeName string, props ...*Property) *ComplexValue {
	c := &ComplexValue{Type: typeName}
	for _, p := range props {
		c.properties.add(p)
	}
	return c
}

func (c *ComplexValue) Kind() ValueKind  { return KindComplex }
func (c *ComplexValue) TypeName() string { return c.Type }
func (c *ComplexValue) value()           {}

// Properties returns the properties in order.
func (c *ComplexValue) Properties() []*Property {
	return c.properties
}

// Property returns the first property with the given name.
func (c *ComplexValue) Property(name string) (*Property, bool) {
	return c.properties.get(name)
}

// AddProperty appends p unless a property with the same name exists.
func (c *ComplexValue) AddProperty(p *Property) bool {
	return c.properties.add(p)
}

// AddLink routes link into the navigation or association list. A duplicate
// or an unrecognized link type is a no-op returning false; a media-edit link
// is rejected with ErrMediaLinkOnComplex.
func (c *ComplexValue) AddLink(link *Link) (bool, error) {
	if link == nil {
		return false, nil
	}
	switch {
	case link.Type == LinkTypeMediaEdit:
		return false, ErrMediaLinkOnComplex
	case link.Type == LinkTypeAssociation:
		return c.associationLinks.add(link), nil
	case link.Type.IsNavigation():
		return c.navigationLinks.add(link), nil
	default:
		return false, nil
	}
}

// RemoveLink removes a link equal to link from whichever list holds it.
func (c *ComplexValue) RemoveLink(link *Link) bool {
	return c.navigationLinks.remove(link) || c.associationLinks.remove(link)
}

// NavigationLinks returns the navigation links.
func (c *ComplexValue) NavigationLinks() []*Link {
	return c.navigationLinks
}

// AssociationLinks returns the association links.
func (c *ComplexValue) AssociationLinks() []*Link {
	return c.associationLinks
}

// NavigationLink returns the navigation link with the given title.
func (c *ComplexValue) NavigationLink(title string) (*Link, bool) {
	return c.navigationLinks.byTitle(title)
}
