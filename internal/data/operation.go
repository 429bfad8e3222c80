package data

import "net/url"

// OperationKind distinguishes bound actions from bound functions.
type OperationKind int

const (
	OperationAction OperationKind = iota + 1
	OperationFunction
)

// Operation references an action or function bound to an entity.
type Operation struct {
	// Metadata is the metadata anchor, e.g. "#Sales.Discount".
	Metadata string
	Title    string
	Target   *url.URL
	Kind     OperationKind
}
