package data

import "net/url"

// DeletedReason tells why an entity appears in a delta as deleted.
type DeletedReason int

const (
	// ReasonDeleted marks an entity that was physically removed.
	ReasonDeleted DeletedReason = iota + 1
	// ReasonChanged marks an entity that no longer matches the defining query.
	ReasonChanged
)

func (r DeletedReason) String() string {
	switch r {
	case ReasonDeleted:
		return "deleted"
	case ReasonChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// DeletedEntity is a tombstone in a delta payload.
type DeletedEntity struct {
	ID     *url.URL
	Reason DeletedReason
}

// DeltaLink records an added or removed relationship.
type DeltaLink struct {
	Annotatable

	Source       *url.URL
	Relationship string
	Target       *url.URL
}

// Delta is an entity collection carrying incremental changes.
type Delta struct {
	EntityCollection

	DeletedEntities []DeletedEntity
	AddedLinks      []*DeltaLink
	DeletedLinks    []*DeltaLink
}

// NewDelta creates an empty delta payload.
func NewDelta() *Delta {
	return &Delta{}
}

// AddDeleted records a tombstone.
func (d *Delta) AddDeleted(id *url.URL, reason DeletedReason) {
	d.DeletedEntities = append(d.DeletedEntities, DeletedEntity{ID: id, Reason: reason})
}

// AddLink records an added relationship.
func (d *Delta) AddLink(source *url.URL, relationship string, target *url.URL) *DeltaLink {
	link := &DeltaLink{Source: source, Relationship: relationship, Target: target}
	d.AddedLinks = append(d.AddedLinks, link)
	return link
}

// DeleteLink records a removed relationship.
func (d *Delta) DeleteLink(source *url.URL, relationship string, target *url.URL) *DeltaLink {
	link := &DeltaLink{Source: source, Relationship: relationship, Target: target}
	d.DeletedLinks = append(d.DeletedLinks, link)
	return link
}
