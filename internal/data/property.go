package data

// Property is a named value.
type Property struct {
	Annotatable

	Name  string
	Value Value
}

// NewProperty creates a property.
func NewProperty(name string, value Value) *Property {
	return &Property{Name: name, Value: value}
}

// IsNull reports whether the property has no value.
func (p *Property) IsNull() bool {
	return p == nil || HasNullValue(p.Value)
}

// HasPrimitiveValue is false whenever the property is null.
func (p *Property) HasPrimitiveValue() bool {
	return !p.IsNull() && IsPrimitive(p.Value)
}

// HasComplexValue is false whenever the property is null.
func (p *Property) HasComplexValue() bool {
	return !p.IsNull() && IsComplex(p.Value)
}

// HasCollectionValue is false whenever the property is null.
func (p *Property) HasCollectionValue() bool {
	return !p.IsNull() && IsCollection(p.Value)
}

// HasEnumValue is false whenever the property is null.
func (p *Property) HasEnumValue() bool {
	return !p.IsNull() && IsEnum(p.Value)
}

// PrimitiveValue returns the primitive value, or nil for other kinds.
func (p *Property) PrimitiveValue() *PrimitiveValue {
	if p == nil {
		return nil
	}
	v, _ := AsPrimitive(p.Value)
	return v
}

// properties is an ordered list of properties, unique by name.
type properties []*Property

func (ps properties) get(name string) (*Property, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (ps *properties) add(p *Property) bool {
	if p == nil {
		return false
	}
	if _, exists := ps.get(p.Name); exists {
		return false
	}
	*ps = append(*ps, p)
	return true
}

func (ps *properties) set(p *Property) {
	for i, existing := range *ps {
		if existing.Name == p.Name {
			(*ps)[i] = p
			return
		}
	}
	*ps = append(*ps, p)
}

func (ps *properties) remove(name string) bool {
	for i, p := range *ps {
		if p.Name == name {
			*ps = append((*ps)[:i], (*ps)[i+1:]...)
			return true
		}
	}
	return false
}
