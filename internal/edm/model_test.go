package edm

import "testing"

func newCustomerType() *EntityType {
	return &EntityType{
		Name: "Customer",
		Key:  []string{"ID"},
		Properties: []PropertyDef{
			{Name: "ID", Type: Int32},
			{Name: "Name", Type: String, Nullable: true, Searchable: true},
		},
		NavigationProperties: []NavigationDef{
			{Name: "Orders", Target: "Order", Collection: true},
		},
	}
}

func TestModelRegistration(t *testing.T) {
	m := NewModel("Sales")
	customer := newCustomerType()
	if err := m.AddEntityType(customer); err != nil {
		t.Fatalf("AddEntityType failed: %v", err)
	}
	if err := m.AddEntityType(newCustomerType()); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	if customer.FullName() != "Sales.Customer" {
		t.Errorf("unexpected full name %q", customer.FullName())
	}
	for _, name := range []string{"Customer", "Sales.Customer"} {
		if got, ok := m.EntityType(name); !ok || got != customer {
			t.Errorf("EntityType(%q) not resolved", name)
		}
	}

	set, err := m.AddEntitySet("Customers", "Customer")
	if err != nil {
		t.Fatalf("AddEntitySet failed: %v", err)
	}
	if got, ok := m.EntitySet("Customers"); !ok || got != set || got.Type != customer {
		t.Error("entity set lookup failed")
	}
	if _, err := m.AddEntitySet("Orders", "Order"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestEntityTypeLookups(t *testing.T) {
	customer := newCustomerType()
	if p, ok := customer.Property("Name"); !ok || p.Type != String || !p.Searchable {
		t.Errorf("unexpected property %+v", p)
	}
	if _, ok := customer.Property("Missing"); ok {
		t.Error("expected missing property")
	}
	if n, ok := customer.NavigationProperty("Orders"); !ok || !n.Collection {
		t.Errorf("unexpected navigation %+v", n)
	}

	var nilType *EntityType
	if _, ok := nilType.Property("ID"); ok {
		t.Error("nil type must not resolve properties")
	}
}
