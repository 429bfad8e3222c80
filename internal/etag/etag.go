package etag

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
)

// Generate creates a weak ETag for an entity from the named properties, or
// from every primitive property when no names are given. Properties are
// hashed in the given order (document order otherwise) together with their
// names and type names. Returns an empty string if no property contributed.
func Generate(entity *data.Entity, properties ...string) string {
	if entity == nil {
		return ""
	}

	digest := xxhash.New()
	contributed := false

	write := func(p *data.Property) {
		prim, ok := data.AsPrimitive(p.Value)
		if !ok {
			return
		}
		contributed = true
		_, _ = digest.WriteString(p.Name)
		_, _ = digest.Write([]byte{0})
		_, _ = digest.WriteString(prim.TypeName())
		_, _ = digest.Write([]byte{0})
		if prim.IsNull() {
			_, _ = digest.Write([]byte{1})
		} else {
			_, _ = digest.WriteString(edm.FormatValue(prim.Type, prim.Raw()))
		}
		_, _ = digest.Write([]byte{0})
	}

	if len(properties) == 0 {
		for _, p := range entity.Properties() {
			write(p)
		}
	} else {
		for _, name := range properties {
			if p, ok := entity.Property(name); ok {
				write(p)
			}
		}
	}

	if !contributed {
		return ""
	}
	// Return as quoted ETag (weak ETag format: W/"hash")
	return fmt.Sprintf("W/\"%016x\"", digest.Sum64())
}

// Stamp sets the ETag of every entity in the collection.
func Stamp(coll *data.EntityCollection, properties ...string) {
	if coll == nil {
		return
	}
	for _, e := range coll.Entities {
		e.ETag = Generate(e, properties...)
	}
}

// Parse extracts the opaque value from a strong ("value") or weak (W/"value") ETag.
func Parse(etag string) string {
	if len(etag) > 2 && etag[:2] == "W/" {
		etag = etag[2:]
	}
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}
	return etag
}

// Match reports whether two ETags denote the same entity state, ignoring
// the weak marker. Empty ETags never match.
func Match(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Parse(a) == Parse(b)
}
