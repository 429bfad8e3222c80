package data

// Annotation is an instance annotation: a qualified term and its value.
type Annotation struct {
	Term  string
	Value Value
}

// Annotatable is embedded by every payload element that carries annotations.
type Annotatable struct {
	annotations []*Annotation
}

// Annotations returns the annotations in insertion order.
func (a *Annotatable) Annotations() []*Annotation {
	return a.annotations
}

// AddAnnotation appends an annotation.
func (a *Annotatable) AddAnnotation(term string, value Value) *Annotation {
	ann := &Annotation{Term: term, Value: value}
	a.annotations = append(a.annotations, ann)
	return ann
}

// Annotation returns the first annotation for term.
func (a *Annotatable) Annotation(term string) (*Annotation, bool) {
	for _, ann := range a.annotations {
		if ann.Term == term {
			return ann, true
		}
	}
	return nil, false
}
