package query

import (
	"bytes"
	"cmp"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// TypedOperand is the result of evaluating one expression node against one
// entity: a primitive kind plus the normalized raw value (nil when null).
// Enum members carry their type name in EnumType and the member name as Value.
type TypedOperand struct {
	Type     edm.PrimitiveKind
	Value    interface{}
	EnumType string
}

// NullOperand returns a null operand of the given kind.
func NullOperand(kind edm.PrimitiveKind) TypedOperand {
	return TypedOperand{Type: kind}
}

// BoolOperand wraps a boolean.
func BoolOperand(b bool) TypedOperand {
	return TypedOperand{Type: edm.Boolean, Value: b}
}

// IsNull reports whether the operand has no value.
func (o TypedOperand) IsNull() bool {
	return o.Value == nil
}

// IsBoolean reports whether the operand is of kind Edm.Boolean.
func (o TypedOperand) IsBoolean() bool {
	return o.Type == edm.Boolean
}

// IsEnum reports whether the operand is an enum member.
func (o TypedOperand) IsEnum() bool {
	return o.EnumType != ""
}

// IsTrue reports a boolean operand whose value is exactly true.
func (o TypedOperand) IsTrue() bool {
	b, ok := o.Value.(bool)
	return o.IsBoolean() && ok && b
}

// numericRank orders the numeric kinds for promotion.
var numericRank = map[edm.PrimitiveKind]int{
	edm.SByte:   1,
	edm.Byte:    2,
	edm.Int16:   3,
	edm.Int32:   4,
	edm.Int64:   5,
	edm.Decimal: 6,
	edm.Single:  7,
	edm.Double:  8,
}

// promote returns the kind both numeric operands are widened to.
func promote(a, b edm.PrimitiveKind) edm.PrimitiveKind {
	if a == edm.Decimal || b == edm.Decimal {
		return edm.Decimal
	}
	// neither byte kind holds the other's range
	if (a == edm.SByte && b == edm.Byte) || (a == edm.Byte && b == edm.SByte) {
		return edm.Int16
	}
	if numericRank[a] >= numericRank[b] {
		return a
	}
	return b
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func asDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	if i, ok := asInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}

// compareOperands compares two non-null operands for $filter predicates,
// widening numeric kinds. Incompatible kinds are an evaluation error.
func compareOperands(left, right TypedOperand) (int, error) {
	if left.IsEnum() || right.IsEnum() {
		return compareEnums(left, right)
	}

	if left.Type.IsNumeric() && right.Type.IsNumeric() {
		switch target := promote(left.Type, right.Type); {
		case target == edm.Decimal:
			l, _ := asDecimal(left.Value)
			r, _ := asDecimal(right.Value)
			return l.Cmp(r), nil
		case target == edm.Single || target == edm.Double:
			l, _ := asFloat64(left.Value)
			r, _ := asFloat64(right.Value)
			return cmp.Compare(l, r), nil
		default:
			l, _ := asInt64(left.Value)
			r, _ := asInt64(right.Value)
			return cmp.Compare(l, r), nil
		}
	}

	compatible := left.Type == right.Type ||
		(left.Type == edm.Date && right.Type == edm.DateTimeOffset) ||
		(left.Type == edm.DateTimeOffset && right.Type == edm.Date)
	if !compatible {
		return 0, queryerrors.Evaluation("cannot compare %s with %s", left.Type, right.Type)
	}

	if c, ok := naturalCompare(left.Value, right.Value); ok {
		return c, nil
	}
	return 0, queryerrors.Evaluation("values of type %s are not comparable", left.Type)
}

func compareEnums(left, right TypedOperand) (int, error) {
	l, lok := left.Value.(string)
	r, rok := right.Value.(string)
	if !lok || !rok {
		return 0, queryerrors.Evaluation("cannot compare enum with %s", right.Type)
	}
	if left.IsEnum() && right.IsEnum() && left.EnumType != right.EnumType {
		return 0, queryerrors.Evaluation("cannot compare enum %s with enum %s", left.EnumType, right.EnumType)
	}
	return cmp.Compare(l, r), nil
}

// naturalCompare orders two values of the same Go type. ok is false when the
// types differ or the type has no natural order.
func naturalCompare(a, b interface{}) (int, bool) {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return 0, false
	}
	switch av := a.(type) {
	case string:
		return cmp.Compare(av, b.(string)), true
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case int8:
		return cmp.Compare(av, b.(int8)), true
	case uint8:
		return cmp.Compare(av, b.(uint8)), true
	case int16:
		return cmp.Compare(av, b.(int16)), true
	case int32:
		return cmp.Compare(av, b.(int32)), true
	case int64:
		return cmp.Compare(av, b.(int64)), true
	case float32:
		return cmp.Compare(av, b.(float32)), true
	case float64:
		return cmp.Compare(av, b.(float64)), true
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal)), true
	case time.Time:
		return av.Compare(b.(time.Time)), true
	case time.Duration:
		return cmp.Compare(av, b.(time.Duration)), true
	case uuid.UUID:
		bv := b.(uuid.UUID)
		return bytes.Compare(av[:], bv[:]), true
	case []byte:
		// equality only
		if bytes.Equal(av, b.([]byte)) {
			return 0, true
		}
		return 0, false
	}
	return 0, false
}

// orderCompare is the $orderby key comparison: null sorts first, values of
// different runtime types or without a natural order compare equal.
func orderCompare(a, b TypedOperand) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if _, isBytes := a.Value.([]byte); isBytes {
		return 0
	}
	c, _ := naturalCompare(a.Value, b.Value)
	return c
}

// equalOperands implements eq; binary values compare by content.
func equalOperands(left, right TypedOperand) (bool, error) {
	if lb, ok := left.Value.([]byte); ok {
		rb, ok := right.Value.([]byte)
		if !ok {
			return false, queryerrors.Evaluation("cannot compare %s with %s", left.Type, right.Type)
		}
		return bytes.Equal(lb, rb), nil
	}
	c, err := compareOperands(left, right)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// arithmetic applies add, sub, mul, div or mod.
func arithmetic(op BinaryOperator, left, right TypedOperand) (TypedOperand, error) {
	if left.Type.IsNumeric() && right.Type.IsNumeric() {
		target := promote(left.Type, right.Type)
		if left.IsNull() || right.IsNull() {
			return NullOperand(target), nil
		}
		return numericArithmetic(op, target, left.Value, right.Value)
	}

	if left.IsNull() || right.IsNull() {
		kind, err := temporalResultKind(op, left.Type, right.Type)
		if err != nil {
			return TypedOperand{}, err
		}
		return NullOperand(kind), nil
	}
	return temporalArithmetic(op, left, right)
}

func numericArithmetic(op BinaryOperator, target edm.PrimitiveKind, l, r interface{}) (TypedOperand, error) {
	var result interface{}

	switch target {
	case edm.Decimal:
		a, _ := asDecimal(l)
		b, _ := asDecimal(r)
		switch op {
		case OpAdd:
			result = a.Add(b)
		case OpSub:
			result = a.Sub(b)
		case OpMul:
			result = a.Mul(b)
		case OpDiv, OpMod:
			if b.IsZero() {
				return TypedOperand{}, queryerrors.Evaluation("division by zero")
			}
			if op == OpDiv {
				result = a.Div(b)
			} else {
				result = a.Mod(b)
			}
		}
	case edm.Single, edm.Double:
		a, _ := asFloat64(l)
		b, _ := asFloat64(r)
		switch op {
		case OpAdd:
			result = a + b
		case OpSub:
			result = a - b
		case OpMul:
			result = a * b
		case OpDiv:
			result = a / b
		case OpMod:
			result = math.Mod(a, b)
		}
	default:
		a, _ := asInt64(l)
		b, _ := asInt64(r)
		switch op {
		case OpAdd:
			result = a + b
		case OpSub:
			result = a - b
		case OpMul:
			result = a * b
		case OpDiv, OpMod:
			if b == 0 {
				return TypedOperand{}, queryerrors.Evaluation("division by zero")
			}
			if op == OpDiv {
				result = a / b
			} else {
				result = a % b
			}
		}
	}

	if result == nil {
		return TypedOperand{}, queryerrors.Evaluation("unsupported arithmetic operator %s", op)
	}
	normalized, err := edm.Normalize(target, result)
	if err != nil {
		return TypedOperand{}, queryerrors.Evaluation("arithmetic overflow: %v", err)
	}
	return TypedOperand{Type: target, Value: normalized}, nil
}

// temporalResultKind is the result kind of date/duration arithmetic.
func temporalResultKind(op BinaryOperator, l, r edm.PrimitiveKind) (edm.PrimitiveKind, error) {
	switch {
	case (op == OpAdd || op == OpSub) && (l == edm.DateTimeOffset || l == edm.Date) && r == edm.Duration:
		return l, nil
	case op == OpAdd && l == edm.Duration && (r == edm.DateTimeOffset || r == edm.Date):
		return r, nil
	case op == OpSub && (l == edm.DateTimeOffset || l == edm.Date) && l == r:
		return edm.Duration, nil
	case (op == OpAdd || op == OpSub) && l == edm.Duration && r == edm.Duration:
		return edm.Duration, nil
	}
	return edm.Unknown, queryerrors.Evaluation("operator %s is not defined for %s and %s", op, l, r)
}

func temporalArithmetic(op BinaryOperator, left, right TypedOperand) (TypedOperand, error) {
	kind, err := temporalResultKind(op, left.Type, right.Type)
	if err != nil {
		return TypedOperand{}, err
	}

	var result interface{}
	switch {
	case left.Type == edm.Duration && right.Type == edm.Duration:
		l, r := left.Value.(time.Duration), right.Value.(time.Duration)
		if op == OpAdd {
			result = l + r
		} else {
			result = l - r
		}
	case kind == edm.Duration:
		result = left.Value.(time.Time).Sub(right.Value.(time.Time))
	case left.Type == edm.Duration:
		result = right.Value.(time.Time).Add(left.Value.(time.Duration))
	default:
		d := right.Value.(time.Duration)
		if op == OpSub {
			d = -d
		}
		result = left.Value.(time.Time).Add(d)
	}

	normalized, err := edm.Normalize(kind, result)
	if err != nil {
		return TypedOperand{}, queryerrors.Evaluation("%v", err)
	}
	return TypedOperand{Type: kind, Value: normalized}, nil
}

// negate implements unary minus.
func negate(o TypedOperand) (TypedOperand, error) {
	if o.IsNull() && (o.Type.IsNumeric() || o.Type == edm.Duration) {
		return o, nil
	}
	var result interface{}
	switch v := o.Value.(type) {
	case decimal.Decimal:
		result = v.Neg()
	case float32:
		result = -v
	case float64:
		result = -v
	case time.Duration:
		result = -v
	default:
		n, ok := asInt64(v)
		if !ok {
			return TypedOperand{}, queryerrors.Evaluation("operator - is not defined for %s", o.Type)
		}
		result = -n
	}
	normalized, err := edm.Normalize(o.Type, result)
	if err != nil {
		return TypedOperand{}, queryerrors.Evaluation("arithmetic overflow: %v", err)
	}
	return TypedOperand{Type: o.Type, Value: normalized}, nil
}
