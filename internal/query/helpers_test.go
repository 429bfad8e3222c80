package query

import (
	"testing"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
)

func prim(kind edm.PrimitiveKind, v interface{}) *data.PrimitiveValue {
	return data.MustPrimitive(kind, v)
}

func person(id int, name string) *data.Entity {
	return data.NewEntity("Demo.Person",
		data.NewProperty("Id", prim(edm.Int32, id)),
		data.NewProperty("Name", prim(edm.String, name)),
	)
}

func peopleCollection(n int) *data.EntityCollection {
	coll := data.NewEntityCollection()
	for i := 1; i <= n; i++ {
		coll.Add(person(i, "Person"))
	}
	return coll
}

func personType() *edm.EntityType {
	return &edm.EntityType{
		Namespace: "Demo",
		Name:      "Person",
		Key:       []string{"Id"},
		Properties: []edm.PropertyDef{
			{Name: "Id", Type: edm.Int32},
			{Name: "Name", Type: edm.String, Nullable: true},
			{Name: "Age", Type: edm.Int32, Nullable: true},
		},
		NavigationProperties: []edm.NavigationDef{
			{Name: "Manager", Target: "Demo.Person"},
			{Name: "Friends", Target: "Demo.Person", Collection: true},
		},
	}
}

func idsOf(t *testing.T, coll *data.EntityCollection) []int32 {
	t.Helper()
	ids := make([]int32, 0, coll.Len())
	for _, e := range coll.Entities {
		p, ok := e.Property("Id")
		if !ok {
			t.Fatalf("entity without Id")
		}
		ids = append(ids, p.PrimitiveValue().Raw().(int32))
	}
	return ids
}

func equalIDs(a []int32, b ...int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
