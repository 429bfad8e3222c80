package query

import (
	"strings"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// ApplySearch keeps the entities for which at least one primitive, non-null
// property satisfies search on its own. Each property is rendered as text
// and the whole expression is evaluated against that single string; the
// first match short-circuits. A nil search is a no-op.
//
// When the entity type marks properties as searchable, only those are scanned.
func ApplySearch(coll *data.EntityCollection, search SearchExpression, ctx EvalContext) error {
	if coll == nil || search == nil {
		return nil
	}

	keep := make([]bool, len(coll.Entities))
	for i, entity := range coll.Entities {
		entityType := ctx.EntityType
		if entityType == nil {
			entityType = ctx.lookupType(entity.Type)
		}
		matched, err := searchEntity(entity, search, searchableProperties(entityType))
		if err != nil {
			return err
		}
		keep[i] = matched
	}

	i := 0
	coll.Retain(func(*data.Entity) bool {
		k := keep[i]
		i++
		return k
	})
	return nil
}

// searchableProperties returns the names marked searchable, or nil when
// every property is searched.
func searchableProperties(entityType *edm.EntityType) map[string]bool {
	if entityType == nil {
		return nil
	}
	var names map[string]bool
	for _, p := range entityType.Properties {
		if p.Searchable {
			if names == nil {
				names = make(map[string]bool)
			}
			names[p.Name] = true
		}
	}
	return names
}

func searchEntity(entity *data.Entity, search SearchExpression, only map[string]bool) (bool, error) {
	for _, prop := range entity.Properties() {
		if only != nil && !only[prop.Name] {
			continue
		}
		if !data.HasPrimitiveValue(prop.Value) {
			continue
		}
		p, _ := data.AsPrimitive(prop.Value)
		matched, err := matchSearch(search, edm.FormatValue(p.Type, p.Raw()))
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func matchSearch(expr SearchExpression, text string) (bool, error) {
	switch n := expr.(type) {
	case *SearchTerm:
		return strings.Contains(text, n.Term), nil
	case *SearchUnary:
		matched, err := matchSearch(n.Operand, text)
		return !matched, err
	case *SearchBinary:
		left, err := matchSearch(n.Left, text)
		if err != nil {
			return false, err
		}
		right, err := matchSearch(n.Right, text)
		if err != nil {
			return false, err
		}
		switch n.Operator {
		case SearchAnd:
			return left && right, nil
		case SearchOr:
			return left || right, nil
		}
		return false, queryerrors.Evaluation("unsupported search operator %q", n.Operator)
	default:
		return false, queryerrors.Evaluation("unsupported search expression %T", expr)
	}
}
