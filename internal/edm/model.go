package edm

import (
	"fmt"
	"sync"
)

// PropertyDef describes a structural property of an entity or complex type.
type PropertyDef struct {
	Name string
	// Type is the primitive kind; Unknown for complex or enum properties.
	Type PrimitiveKind
	// TypeName names the complex or enum type when Type is Unknown.
	TypeName   string
	Collection bool
	Nullable   bool
	// Searchable marks the property for $search; when no property of a type is
	// marked, every primitive property is searched.
	Searchable bool
}

// NavigationDef describes a navigation property.
type NavigationDef struct {
	Name string
	// Target is the name of the related entity type.
	Target     string
	Collection bool
}

// EntityType is the metadata the engine needs about one entity type.
type EntityType struct {
	Namespace            string
	Name                 string
	Key                  []string
	Properties           []PropertyDef
	NavigationProperties []NavigationDef
}

// FullName returns the namespace-qualified type name.
func (t *EntityType) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Property looks up a structural property by name.
func (t *EntityType) Property(name string) (PropertyDef, bool) {
	if t == nil {
		return PropertyDef{}, false
	}
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// NavigationProperty looks up a navigation property by name.
func (t *EntityType) NavigationProperty(name string) (NavigationDef, bool) {
	if t == nil {
		return NavigationDef{}, false
	}
	for _, n := range t.NavigationProperties {
		if n.Name == name {
			return n, true
		}
	}
	return NavigationDef{}, false
}

// EntitySet binds a named set to its entity type.
type EntitySet struct {
	Name string
	Type *EntityType
}

// Model is an in-memory EDM context: entity types and entity sets by name.
// It is safe for concurrent use.
type Model struct {
	Namespace string

	mu    sync.RWMutex
	types map[string]*EntityType
	sets  map[string]*EntitySet
}

// NewModel creates an empty model for the given namespace.
func NewModel(namespace string) *Model {
	return &Model{
		Namespace: namespace,
		types:     make(map[string]*EntityType),
		sets:      make(map[string]*EntitySet),
	}
}

// AddEntityType registers t under both its bare and qualified names.
func (m *Model) AddEntityType(t *EntityType) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("entity type must have a name")
	}
	if t.Namespace == "" {
		t.Namespace = m.Namespace
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.types[t.Name]; exists {
		return fmt.Errorf("entity type '%s' is already registered", t.Name)
	}
	m.types[t.Name] = t
	m.types[t.FullName()] = t
	return nil
}

// EntityType resolves a bare or qualified entity type name.
func (m *Model) EntityType(name string) (*EntityType, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[name]
	return t, ok
}

// AddEntitySet registers an entity set for an already registered type.
func (m *Model) AddEntitySet(name, typeName string) (*EntitySet, error) {
	t, ok := m.EntityType(typeName)
	if !ok {
		return nil, fmt.Errorf("entity type '%s' is not registered", typeName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sets[name]; exists {
		return nil, fmt.Errorf("entity set '%s' is already registered", name)
	}
	set := &EntitySet{Name: name, Type: t}
	m.sets[name] = set
	return set, nil
}

// EntitySet looks up an entity set by name.
func (m *Model) EntitySet(name string) (*EntitySet, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sets[name]
	return s, ok
}
