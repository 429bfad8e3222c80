package data

// LinkType routes a link into exactly one of the link lists of an entity.
type LinkType int

const (
	LinkTypeUnknown LinkType = iota
	LinkTypeEntityNavigation
	LinkTypeEntitySetNavigation
	LinkTypeAssociation
	LinkTypeMediaEdit
	LinkTypeEntityBinding
	LinkTypeEntityCollectionBinding
)

func (t LinkType) String() string {
	switch t {
	case LinkTypeEntityNavigation:
		return "entityNavigation"
	case LinkTypeEntitySetNavigation:
		return "entitySetNavigation"
	case LinkTypeAssociation:
		return "association"
	case LinkTypeMediaEdit:
		return "mediaEdit"
	case LinkTypeEntityBinding:
		return "entityBinding"
	case LinkTypeEntityCollectionBinding:
		return "entityCollectionBinding"
	default:
		return "unknown"
	}
}

// IsNavigation reports whether links of this type belong in the navigation list.
func (t LinkType) IsNavigation() bool {
	switch t {
	case LinkTypeEntityNavigation, LinkTypeEntitySetNavigation, LinkTypeEntityBinding, LinkTypeEntityCollectionBinding:
		return true
	}
	return false
}

// Link is a navigation, association or media-edit link.
type Link struct {
	Annotatable

	// Title is the navigation property or stream property name.
	Title     string
	Rel       string
	Href      string
	Type      LinkType
	MediaETag string

	// InlineEntity holds an expanded single-valued navigation target.
	InlineEntity *Entity
	// InlineEntitySet holds an expanded collection-valued navigation target.
	InlineEntitySet *EntityCollection
}

// NewLink creates a link of the given type.
func NewLink(linkType LinkType, title, href string) *Link {
	return &Link{Type: linkType, Title: title, Href: href}
}

// Equal reports value equality of the link descriptors. Inline content is
// compared by identity.
func (l *Link) Equal(other *Link) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Title == other.Title &&
		l.Rel == other.Rel &&
		l.Href == other.Href &&
		l.Type == other.Type &&
		l.MediaETag == other.MediaETag &&
		l.InlineEntity == other.InlineEntity &&
		l.InlineEntitySet == other.InlineEntitySet
}

// linkList is an ordered list of links deduplicated by Equal.
type linkList []*Link

func (ll *linkList) add(link *Link) bool {
	if ll.contains(link) {
		return false
	}
	*ll = append(*ll, link)
	return true
}

func (ll linkList) contains(link *Link) bool {
	for _, l := range ll {
		if l.Equal(link) {
			return true
		}
	}
	return false
}

func (ll *linkList) remove(link *Link) bool {
	for i, l := range *ll {
		if l.Equal(link) {
			*ll = append((*ll)[:i], (*ll)[i+1:]...)
			return true
		}
	}
	return false
}

func (ll linkList) byTitle(title string) (*Link, bool) {
	for _, l := range ll {
		if l.Title == title {
			return l, true
		}
	}
	return nil, false
}
