package data

import "net/url"

// EntityCollection is an ordered batch of entities plus paging metadata.
type EntityCollection struct {
	Annotatable

	Entities  []*Entity
	Next      *url.URL
	DeltaLink *url.URL

	count *int
}

// NewEntityCollection creates a collection holding entities.
func NewEntityCollection(entities ...*Entity) *EntityCollection {
	return &EntityCollection{Entities: entities}
}

// Count returns the explicit count when one was set, the number of
// entities otherwise.
func (c *EntityCollection) Count() int {
	if c.count != nil {
		return *c.count
	}
	return len(c.Entities)
}

// HasCount reports whether an explicit count was set.
func (c *EntityCollection) HasCount() bool {
	return c.count != nil
}

// SetCount records a server-side total.
func (c *EntityCollection) SetCount(n int) {
	c.count = &n
}

// Len returns the number of entities currently held.
func (c *EntityCollection) Len() int {
	return len(c.Entities)
}

// Add appends entities.
func (c *EntityCollection) Add(entities ...*Entity) {
	c.Entities = append(c.Entities, entities...)
}

// Retain keeps the entities for which keep returns true, preserving order.
func (c *EntityCollection) Retain(keep func(*Entity) bool) {
	kept := c.Entities[:0]
	for _, e := range c.Entities {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(c.Entities); i++ {
		c.Entities[i] = nil
	}
	c.Entities = kept
}

// PopFront removes up to n entities from the front and returns how many were removed.
func (c *EntityCollection) PopFront(n int) int {
	if n > len(c.Entities) {
		n = len(c.Entities)
	}
	if n <= 0 {
		return 0
	}
	c.Entities = c.Entities[n:]
	return n
}

// PopBack removes the last entity.
func (c *EntityCollection) PopBack() (*Entity, bool) {
	if len(c.Entities) == 0 {
		return nil, false
	}
	last := c.Entities[len(c.Entities)-1]
	c.Entities[len(c.Entities)-1] = nil
	c.Entities = c.Entities[:len(c.Entities)-1]
	return last, true
}
