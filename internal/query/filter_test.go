package query

import (
	"errors"
	"testing"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter ASTNode
		want   []int32
	}{
		{"no filter", nil, []int32{1, 2, 3}},
		{"Id gt 1", Binary(Member("Id"), OpGreaterThan, Literal(edm.Int32, 1)), []int32{2, 3}},
		{"Id eq 2 or Id eq 3", Binary(
			Binary(Member("Id"), OpEqual, Literal(edm.Int32, 2)),
			OpOr,
			Binary(Member("Id"), OpEqual, Literal(edm.Int32, 3)),
		), []int32{2, 3}},
		{"non-boolean result removes everything", Member("Id"), []int32{}},
		{"null result removes the entity", Binary(Literal(edm.Int32, nil), OpGreaterThan, Member("Id")), []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := peopleCollection(3)
			if err := ApplyFilter(coll, tt.filter, EvalContext{}); err != nil {
				t.Fatalf("ApplyFilter() error = %v", err)
			}
			if got := idsOf(t, coll); !equalIDs(got, tt.want...) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFilter_EvaluationErrorAborts(t *testing.T) {
	coll := peopleCollection(3)
	// the third entity lacks Name, which is not declared anywhere
	coll.Entities[2].RemoveProperty("Name")

	err := ApplyFilter(coll, Binary(Member("Name"), OpEqual, Literal(edm.String, "Person")), EvalContext{})
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	if !errors.Is(err, queryerrors.ErrExpressionEvaluation) {
		t.Errorf("error = %v, want expression evaluation error", err)
	}
	if coll.Len() != 3 {
		t.Errorf("collection was modified: %d entities", coll.Len())
	}
}

func TestApplyFilter_NullableProperty(t *testing.T) {
	coll := data.NewEntityCollection(
		data.NewEntity("Demo.Person",
			data.NewProperty("Id", prim(edm.Int32, 1)),
			data.NewProperty("Age", prim(edm.Int32, 30)),
		),
		data.NewEntity("Demo.Person",
			data.NewProperty("Id", prim(edm.Int32, 2)),
			data.NewProperty("Age", data.NewNullPrimitive(edm.Int32)),
		),
		data.NewEntity("Demo.Person",
			data.NewProperty("Id", prim(edm.Int32, 3)),
		),
	)
	ctx := EvalContext{EntityType: personType()}

	if err := ApplyFilter(coll, Binary(Member("Age"), OpEqual, Literal(edm.Int32, nil)), ctx); err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}
	if got := idsOf(t, coll); !equalIDs(got, 2, 3) {
		t.Errorf("ids = %v, want [2 3]", got)
	}
}
