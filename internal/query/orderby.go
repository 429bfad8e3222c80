package query

import (
	"sort"

	"github.com/nlstn/go-odata-engine/internal/data"
)

// ApplyOrderBy sorts the collection by items using a stable sort, so entities
// whose keys all compare equal keep their relative order. Nulls sort before
// every non-null value; keys of different runtime types compare equal.
// On an evaluation error the collection keeps its original order.
func ApplyOrderBy(coll *data.EntityCollection, items []OrderByItem, ctx EvalContext) error {
	if coll == nil || len(items) == 0 || coll.Len() < 2 {
		return nil
	}

	keys := &sortKeys{items: items, ctx: ctx, cache: make(map[*data.Entity]*entityKeys, coll.Len())}
	sorted := append([]*data.Entity(nil), coll.Entities...)

	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := keys.compare(sorted[i], sorted[j])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return sortErr
	}

	coll.Entities = sorted
	return nil
}

// sortKeys evaluates each entity's ordering keys at most once.
type sortKeys struct {
	items []OrderByItem
	ctx   EvalContext
	cache map[*data.Entity]*entityKeys
}

type entityKeys struct {
	values    []TypedOperand
	evaluated []bool
}

func (s *sortKeys) key(entity *data.Entity, i int) (TypedOperand, error) {
	k := s.cache[entity]
	if k == nil {
		k = &entityKeys{values: make([]TypedOperand, len(s.items)), evaluated: make([]bool, len(s.items))}
		s.cache[entity] = k
	}
	if k.evaluated[i] {
		return k.values[i], nil
	}
	v, err := Evaluate(s.items[i].Expression, entity, s.ctx)
	if err != nil {
		return TypedOperand{}, err
	}
	k.values[i], k.evaluated[i] = v, true
	return v, nil
}

func (s *sortKeys) compare(a, b *data.Entity) (int, error) {
	for i, item := range s.items {
		left, err := s.key(a, i)
		if err != nil {
			return 0, err
		}
		right, err := s.key(b, i)
		if err != nil {
			return 0, err
		}
		c := orderCompare(left, right)
		if item.Descending {
			c = -c
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
