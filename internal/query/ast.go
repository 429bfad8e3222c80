package query

import "github.com/nlstn/go-odata-engine/internal/edm"

// ASTNode is a node of a $filter or $orderby expression tree. Trees are
// produced by the URI parser; the engine only evaluates them.
type ASTNode interface {
	astNode()
}

// BinaryOperator names a binary operator.
type BinaryOperator string

// Supported binary operators.
const (
	OpEqual              BinaryOperator = "eq"
	OpNotEqual           BinaryOperator = "ne"
	OpGreaterThan        BinaryOperator = "gt"
	OpGreaterThanOrEqual BinaryOperator = "ge"
	OpLessThan           BinaryOperator = "lt"
	OpLessThanOrEqual    BinaryOperator = "le"
	OpAnd                BinaryOperator = "and"
	OpOr                 BinaryOperator = "or"
	OpAdd                BinaryOperator = "add"
	OpSub                BinaryOperator = "sub"
	OpMul                BinaryOperator = "mul"
	OpDiv                BinaryOperator = "div"
	OpMod                BinaryOperator = "mod"
)

// UnaryOperator names a unary operator.
type UnaryOperator string

// Supported unary operators.
const (
	OpNot   UnaryOperator = "not"
	OpMinus UnaryOperator = "-"
)

// BinaryExpr represents a binary expression (e.g., Price gt 100, A and B)
type BinaryExpr struct {
	Left     ASTNode
	Operator BinaryOperator
	Right    ASTNode
}

func (e *BinaryExpr) astNode() {}

// UnaryExpr represents a unary expression (e.g., not X)
type UnaryExpr struct {
	Operator UnaryOperator
	Operand  ASTNode
}

func (e *UnaryExpr) astNode() {}

// MemberExpr represents a property path (e.g., Address/City)
type MemberExpr struct {
	Path []string
}

func (e *MemberExpr) astNode() {}

// LiteralExpr represents a typed literal; a nil Value is the null literal
type LiteralExpr struct {
	Type  edm.PrimitiveKind
	Value interface{}
}

func (e *LiteralExpr) astNode() {}

// EnumLiteralExpr represents an enum literal (e.g., Sales.Color'Red')
type EnumLiteralExpr struct {
	TypeName string
	Member   string
}

func (e *EnumLiteralExpr) astNode() {}

// MethodCallExpr represents a built-in function call (e.g., contains(Name, 'text'))
type MethodCallExpr struct {
	Method string
	Args   []ASTNode
}

func (e *MethodCallExpr) astNode() {}

// Member builds a MemberExpr from path segments.
func Member(path ...string) *MemberExpr {
	return &MemberExpr{Path: path}
}

// Literal builds a LiteralExpr.
func Literal(kind edm.PrimitiveKind, value interface{}) *LiteralExpr {
	return &LiteralExpr{Type: kind, Value: value}
}

// Binary builds a BinaryExpr.
func Binary(left ASTNode, op BinaryOperator, right ASTNode) *BinaryExpr {
	return &BinaryExpr{Left: left, Operator: op, Right: right}
}

// Not builds a negation.
func Not(operand ASTNode) *UnaryExpr {
	return &UnaryExpr{Operator: OpNot, Operand: operand}
}

// Call builds a MethodCallExpr.
func Call(method string, args ...ASTNode) *MethodCallExpr {
	return &MethodCallExpr{Method: method, Args: args}
}
