package query

import (
	"testing"
	"time"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
)

func named(id int, name string) *data.Entity {
	return person(id, name)
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []int32
	}{
		{"phrase OR phrase", `"Bob" OR "Jill"`, []int32{1, 3}},
		{"single term", "Ann", []int32{2}},
		{"substring match", "ones", []int32{1}},
		{"AND within one property", "Bob AND Jones", []int32{1}},
		{"NOT", "NOT Bob", []int32{1, 2, 3}},
		{"case sensitive", "bob", []int32{}},
		{"no match", "Zed", []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := data.NewEntityCollection(named(1, "Bob Jones"), named(2, "Ann"), named(3, "Jill"))
			if err := ApplySearch(coll, ParseSearch(tt.search), EvalContext{}); err != nil {
				t.Fatalf("ApplySearch() error = %v", err)
			}
			if got := idsOf(t, coll); !equalIDs(got, tt.want...) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

// Each property is matched on its own: terms found in two different
// properties do not satisfy an AND.
func TestApplySearch_PerPropertySemantics(t *testing.T) {
	e := data.NewEntity("Demo.Person",
		data.NewProperty("Id", prim(edm.Int32, 1)),
		data.NewProperty("First", prim(edm.String, "Bob")),
		data.NewProperty("Last", prim(edm.String, "Jones")),
	)
	coll := data.NewEntityCollection(e)

	if err := ApplySearch(coll, ParseSearch("Bob AND Jones"), EvalContext{}); err != nil {
		t.Fatalf("ApplySearch() error = %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("expected entity to be removed, got %d", coll.Len())
	}
}

func TestApplySearch_NonStringProperties(t *testing.T) {
	e := data.NewEntity("Demo.Event",
		data.NewProperty("Id", prim(edm.Int32, 42)),
		data.NewProperty("When", prim(edm.Date, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))),
		data.NewProperty("Payload", prim(edm.Binary, []byte("hi"))),
		data.NewProperty("Note", data.NewNullPrimitive(edm.String)),
		data.NewProperty("Kind", data.NewEnum("Demo.Kind", "Launch")),
	)

	tests := []struct {
		search string
		match  bool
	}{
		{"42", true},
		{"2024-02-29", true},
		{"aGk=", true},
		{"Launch", false},
		{"null", false},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			coll := data.NewEntityCollection(e)
			if err := ApplySearch(coll, ParseSearch(tt.search), EvalContext{}); err != nil {
				t.Fatalf("ApplySearch() error = %v", err)
			}
			if got := coll.Len() == 1; got != tt.match {
				t.Errorf("match = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestApplySearch_SearchableProperties(t *testing.T) {
	entityType := &edm.EntityType{
		Namespace: "Demo",
		Name:      "Person",
		Properties: []edm.PropertyDef{
			{Name: "Id", Type: edm.Int32},
			{Name: "Name", Type: edm.String, Searchable: true},
		},
	}
	coll := data.NewEntityCollection(named(1, "Bob"), named(2, "Ann"))

	if err := ApplySearch(coll, ParseSearch("1"), EvalContext{EntityType: entityType}); err != nil {
		t.Fatalf("ApplySearch() error = %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("Id is not searchable, got %d matches", coll.Len())
	}
}

func TestApplySearch_NilIsNoop(t *testing.T) {
	coll := peopleCollection(3)
	if err := ApplySearch(coll, nil, EvalContext{}); err != nil {
		t.Fatalf("ApplySearch() error = %v", err)
	}
	if coll.Len() != 3 {
		t.Errorf("expected 3 entities, got %d", coll.Len())
	}
}
