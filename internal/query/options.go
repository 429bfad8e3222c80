package query

import (
	"time"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

// DefaultPageSize is the server-side page size used when none is configured.
const DefaultPageSize = 10

// QueryOptions holds the parsed system query options of one request.
// A nil or empty field means the option was not supplied.
type QueryOptions struct {
	Filter     ASTNode
	OrderBy    []OrderByItem
	Search     SearchExpression
	Skip       *int
	Top        *int
	SkipToken  *string
	DeltaToken *string
}

// OrderByItem represents a single $orderby key.
type OrderByItem struct {
	Expression ASTNode
	Descending bool
}

// EvalContext carries the metadata expressions are evaluated against.
// Every field is optional.
type EvalContext struct {
	// EntityType describes the entities of the collection. When nil it is
	// looked up in Model by each entity's type name.
	EntityType *edm.EntityType
	// Model resolves navigation targets.
	Model *edm.Model
	// Now backs the now() function; time.Now when nil.
	Now func() time.Time
}

func (c EvalContext) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c EvalContext) lookupType(name string) *edm.EntityType {
	if c.Model == nil || name == "" {
		return nil
	}
	t, ok := c.Model.EntityType(name)
	if !ok {
		return nil
	}
	return t
}
