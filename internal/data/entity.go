package data

import "net/url"

// Entity is one record with a type, optional id, ordered properties and links.
type Entity struct {
	Annotatable

	Type     string
	ID       *url.URL
	ETag     string
	EditLink *url.URL

	// Media entity fields.
	MediaEntity        bool
	MediaContentType   string
	MediaContentSource *url.URL
	MediaETag          string

	properties       properties
	navigationLinks  linkList
	associationLinks linkList
	mediaEditLinks   linkList
	operations       []*Operation
}

// NewEntity creates an entity of the given type with the given properties.
// Properties whose name is already present are dropped.
func NewEntity(typeName string, props ...*Property) *Entity {
	e := &Entity{Type: typeName}
	for _, p := range props {
		e.properties.add(p)
	}
	return e
}

// Properties returns the properties in document order.
func (e *Entity) Properties() []*Property {
	return e.properties
}

// Property returns the first property with the given name.
func (e *Entity) Property(name string) (*Property, bool) {
	return e.properties.get(name)
}

// AddProperty appends p; it returns false without change when a property of
// the same name is already present.
func (e *Entity) AddProperty(p *Property) bool {
	return e.properties.add(p)
}

// SetProperty replaces the property with the same name or appends p.
func (e *Entity) SetProperty(p *Property) {
	if p != nil {
		e.properties.set(p)
	}
}

// RemoveProperty removes the named property.
func (e *Entity) RemoveProperty(name string) bool {
	return e.properties.remove(name)
}

// AddLink routes link by its type into the association, navigation or
// media-edit list. It returns false for duplicates and for unrecognized types.
func (e *Entity) AddLink(link *Link) bool {
	if link == nil {
		return false
	}
	switch {
	case link.Type == LinkTypeAssociation:
		return e.associationLinks.add(link)
	case link.Type == LinkTypeMediaEdit:
		return e.mediaEditLinks.add(link)
	case link.Type.IsNavigation():
		return e.navigationLinks.add(link)
	default:
		return false
	}
}

// RemoveLink removes a link equal to link from whichever list holds it.
func (e *Entity) RemoveLink(link *Link) bool {
	return e.navigationLinks.remove(link) ||
		e.associationLinks.remove(link) ||
		e.mediaEditLinks.remove(link)
}

// NavigationLinks returns the navigation links.
func (e *Entity) NavigationLinks() []*Link { return e.navigationLinks }

// AssociationLinks returns the association links.
func (e *Entity) AssociationLinks() []*Link { return e.associationLinks }

// MediaEditLinks returns the media-edit links.
func (e *Entity) MediaEditLinks() []*Link { return e.mediaEditLinks }

// NavigationLink returns the navigation link for a navigation property.
func (e *Entity) NavigationLink(name string) (*Link, bool) {
	return e.navigationLinks.byTitle(name)
}

// AssociationLink returns the association link with the given title.
func (e *Entity) AssociationLink(name string) (*Link, bool) {
	return e.associationLinks.byTitle(name)
}

// MediaEditLink returns the media-edit link for a stream property.
func (e *Entity) MediaEditLink(name string) (*Link, bool) {
	return e.mediaEditLinks.byTitle(name)
}

// AddOperation records a bound action or function.
func (e *Entity) AddOperation(op *Operation) {
	if op != nil {
		e.operations = append(e.operations, op)
	}
}

// Operations returns the bound operations.
func (e *Entity) Operations() []*Operation {
	return e.operations
}

// Operation returns the bound operation with the given title.
func (e *Entity) Operation(title string) (*Operation, bool) {
	for _, op := range e.operations {
		if op.Title == title {
			return op, true
		}
	}
	return nil, false
}
