package odata

import (
	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/query"
	"github.com/nlstn/go-odata-engine/internal/trackchanges"
)

// QueryOptions represents the parsed system query options of one request.
//
// QueryOptions carries the options the engine applies:
//   - Filter: $filter expression tree
//   - OrderBy: $orderby keys in order
//   - Search: $search expression tree
//   - Skip, Top: $skip and $top counts
//   - SkipToken: $skiptoken for server-driven paging
//   - DeltaToken: $deltatoken for change tracking
//
// Parsing the request URI is left to the caller; ParseSearch is provided for
// $search.
type QueryOptions = query.QueryOptions

// OrderByItem re-exports the parsed $orderby item type for external consumers.
type OrderByItem = query.OrderByItem

// ASTNode re-exports the expression tree node type.
type ASTNode = query.ASTNode

// Expression tree node types.
type (
	BinaryExpr      = query.BinaryExpr
	UnaryExpr       = query.UnaryExpr
	MemberExpr      = query.MemberExpr
	LiteralExpr     = query.LiteralExpr
	EnumLiteralExpr = query.EnumLiteralExpr
	MethodCallExpr  = query.MethodCallExpr
	BinaryOperator  = query.BinaryOperator
	UnaryOperator   = query.UnaryOperator
)

// Search expression types.
type (
	SearchExpression = query.SearchExpression
	SearchTerm       = query.SearchTerm
	SearchBinary     = query.SearchBinary
	SearchUnary      = query.SearchUnary
)

// TypedOperand is the result of evaluating an expression against an entity.
type TypedOperand = query.TypedOperand

// EvalContext carries the metadata expressions are evaluated against.
type EvalContext = query.EvalContext

// Expression builders.
var (
	Member  = query.Member
	Literal = query.Literal
	Binary  = query.Binary
	Not     = query.Not
	Call    = query.Call

	// ParseSearch parses a raw $search value leniently.
	ParseSearch = query.ParseSearch

	// Evaluate evaluates an expression against a single entity.
	Evaluate = query.Evaluate
)

// Value model types.
type (
	Value            = data.Value
	ValueKind        = data.ValueKind
	PrimitiveValue   = data.PrimitiveValue
	ComplexValue     = data.ComplexValue
	CollectionValue  = data.CollectionValue
	EnumValue        = data.EnumValue
	Property         = data.Property
	Entity           = data.Entity
	EntityCollection = data.EntityCollection
	Delta            = data.Delta
	DeletedEntity    = data.DeletedEntity
	DeletedReason    = data.DeletedReason
	DeltaLink        = data.DeltaLink
	Link             = data.Link
	LinkType         = data.LinkType
	Annotation       = data.Annotation
	Operation        = data.Operation
)

// Reasons an entity appears among the deleted entities of a delta.
const (
	ReasonDeleted = data.ReasonDeleted
	ReasonChanged = data.ReasonChanged
)

// Value model constructors.
var (
	NewPrimitive        = data.NewPrimitive
	NewNullPrimitive    = data.NewNullPrimitive
	MustPrimitive       = data.MustPrimitive
	NewComplex          = data.NewComplex
	NewCollection       = data.NewCollection
	NewEnum             = data.NewEnum
	NewProperty         = data.NewProperty
	NewEntity           = data.NewEntity
	NewEntityCollection = data.NewEntityCollection
	NewDelta            = data.NewDelta
	NewLink             = data.NewLink
)

// EDM metadata types.
type (
	PrimitiveKind = edm.PrimitiveKind
	EntityType    = edm.EntityType
	PropertyDef   = edm.PropertyDef
	NavigationDef = edm.NavigationDef
	EntitySet     = edm.EntitySet
	Model         = edm.Model
)

// EDM primitive kinds.
const (
	EdmBinary         = edm.Binary
	EdmBoolean        = edm.Boolean
	EdmByte           = edm.Byte
	EdmDate           = edm.Date
	EdmDateTimeOffset = edm.DateTimeOffset
	EdmDecimal        = edm.Decimal
	EdmDouble         = edm.Double
	EdmDuration       = edm.Duration
	EdmGuid           = edm.Guid
	EdmInt16          = edm.Int16
	EdmInt32          = edm.Int32
	EdmInt64          = edm.Int64
	EdmSByte          = edm.SByte
	EdmSingle         = edm.Single
	EdmString         = edm.String
	EdmTimeOfDay      = edm.TimeOfDay
)

var (
	// NewModel creates an empty EDM model for a namespace.
	NewModel = edm.NewModel

	// ParseKind resolves a qualified name such as "Edm.Int32".
	ParseKind = edm.ParseKind
)

// ChangeType classifies a recorded change.
type ChangeType = trackchanges.ChangeType

// Change types accepted by Engine.RecordChange.
const (
	ChangeAdded   = trackchanges.ChangeTypeAdded
	ChangeUpdated = trackchanges.ChangeTypeUpdated
)

// Operators.
const (
	OpEqual              = query.OpEqual
	OpNotEqual           = query.OpNotEqual
	OpGreaterThan        = query.OpGreaterThan
	OpGreaterThanOrEqual = query.OpGreaterThanOrEqual
	OpLessThan           = query.OpLessThan
	OpLessThanOrEqual    = query.OpLessThanOrEqual
	OpAnd                = query.OpAnd
	OpOr                 = query.OpOr
	OpAdd                = query.OpAdd
	OpSub                = query.OpSub
	OpMul                = query.OpMul
	OpDiv                = query.OpDiv
	OpMod                = query.OpMod
	OpNot                = query.OpNot
	OpMinus              = query.OpMinus
)
