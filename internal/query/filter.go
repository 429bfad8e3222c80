package query

import (
	"github.com/nlstn/go-odata-engine/internal/data"
)

// ApplyFilter keeps the entities for which filter evaluates to boolean true.
// A nil filter is a no-op. The first evaluation error aborts the operation;
// the collection is left unchanged in that case.
func ApplyFilter(coll *data.EntityCollection, filter ASTNode, ctx EvalContext) error {
	if coll == nil || filter == nil {
		return nil
	}

	keep := make([]bool, len(coll.Entities))
	for i, entity := range coll.Entities {
		result, err := Evaluate(filter, entity, ctx)
		if err != nil {
			return err
		}
		keep[i] = result.IsTrue()
	}

	i := 0
	coll.Retain(func(*data.Entity) bool {
		k := keep[i]
		i++
		return k
	})
	return nil
}
