package query

import (
	"strings"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// Evaluate evaluates node against entity. Every failure is a
// queryerrors.KindExpressionEvaluation error.
func Evaluate(node ASTNode, entity *data.Entity, ctx EvalContext) (TypedOperand, error) {
	if entity == nil {
		return TypedOperand{}, queryerrors.Evaluation("cannot evaluate expression without an entity")
	}
	ev := &evaluator{ctx: ctx, entity: entity, entityType: ctx.EntityType}
	if ev.entityType == nil {
		ev.entityType = ctx.lookupType(entity.Type)
	}
	return ev.eval(node)
}

type evaluator struct {
	ctx        EvalContext
	entity     *data.Entity
	entityType *edm.EntityType
}

func (ev *evaluator) eval(node ASTNode) (TypedOperand, error) {
	switch n := node.(type) {
	case *LiteralExpr:
		return ev.literal(n)
	case *EnumLiteralExpr:
		return TypedOperand{Type: edm.Unknown, EnumType: n.TypeName, Value: n.Member}, nil
	case *MemberExpr:
		return ev.member(n.Path)
	case *BinaryExpr:
		return ev.binary(n)
	case *UnaryExpr:
		return ev.unary(n)
	case *MethodCallExpr:
		return ev.call(n)
	case nil:
		return TypedOperand{}, queryerrors.Evaluation("missing expression")
	default:
		return TypedOperand{}, queryerrors.Evaluation("unsupported expression node %T", node)
	}
}

func (ev *evaluator) literal(n *LiteralExpr) (TypedOperand, error) {
	if n.Value == nil {
		return NullOperand(n.Type), nil
	}
	v, err := edm.Normalize(n.Type, n.Value)
	if err != nil {
		return TypedOperand{}, queryerrors.Evaluation("invalid %s literal: %v", n.Type, err)
	}
	return TypedOperand{Type: n.Type, Value: v}, nil
}

// member resolves a property path. Complex values and single-valued inline
// navigation targets are traversed; a declared property that is absent from
// the payload evaluates to null.
func (ev *evaluator) member(path []string) (TypedOperand, error) {
	if len(path) == 0 {
		return TypedOperand{}, queryerrors.Evaluation("empty property path")
	}

	entity := ev.entity
	entityType := ev.entityType
	var complexValue *data.ComplexValue

	for i, segment := range path {
		last := i == len(path)-1

		var prop *data.Property
		var found bool
		if complexValue != nil {
			prop, found = complexValue.Property(segment)
		} else {
			prop, found = entity.Property(segment)
		}

		if found {
			if last {
				return operandFromValue(segment, prop.Value, declaredKind(entityType, complexValue, segment))
			}
			switch data.Kind(prop.Value) {
			case data.KindComplex:
				if data.HasNullValue(prop.Value) {
					return TypedOperand{}, nil
				}
				complexValue, _ = data.AsComplex(prop.Value)
				entityType = nil
				continue
			case data.KindNone:
				return TypedOperand{}, nil
			default:
				if data.HasNullValue(prop.Value) {
					return TypedOperand{}, nil
				}
				return TypedOperand{}, queryerrors.Evaluation("cannot traverse %s property %q", data.Kind(prop.Value), segment)
			}
		}

		var link *data.Link
		if complexValue != nil {
			link, found = complexValue.NavigationLink(segment)
		} else {
			link, found = entity.NavigationLink(segment)
		}
		if found {
			if last {
				return TypedOperand{}, queryerrors.Evaluation("navigation property %q cannot be used as a value", segment)
			}
			if link.InlineEntitySet != nil {
				return TypedOperand{}, queryerrors.Evaluation("collection-valued navigation property %q cannot be traversed", segment)
			}
			if link.InlineEntity == nil {
				return TypedOperand{}, nil
			}
			target := ev.navigationTarget(entityType, segment, link.InlineEntity)
			entity, entityType, complexValue = link.InlineEntity, target, nil
			continue
		}

		if def, ok := entityType.Property(segment); ok && complexValue == nil {
			if last {
				return NullOperand(def.Type), nil
			}
			return TypedOperand{}, nil
		}
		if nav, ok := entityType.NavigationProperty(segment); ok && complexValue == nil {
			if last || nav.Collection {
				return TypedOperand{}, queryerrors.Evaluation("navigation property %q cannot be used as a value", segment)
			}
			return TypedOperand{}, nil
		}

		return TypedOperand{}, queryerrors.Evaluation("property %q not found", strings.Join(path[:i+1], "/"))
	}

	return TypedOperand{}, nil
}

func (ev *evaluator) navigationTarget(owner *edm.EntityType, name string, target *data.Entity) *edm.EntityType {
	if nav, ok := owner.NavigationProperty(name); ok {
		if t := ev.ctx.lookupType(nav.Target); t != nil {
			return t
		}
	}
	return ev.ctx.lookupType(target.Type)
}

func declaredKind(entityType *edm.EntityType, complexValue *data.ComplexValue, name string) edm.PrimitiveKind {
	if complexValue != nil {
		return edm.Unknown
	}
	if def, ok := entityType.Property(name); ok {
		return def.Type
	}
	return edm.Unknown
}

func operandFromValue(name string, v data.Value, declared edm.PrimitiveKind) (TypedOperand, error) {
	switch data.Kind(v) {
	case data.KindNone:
		return NullOperand(declared), nil
	case data.KindPrimitive:
		p, _ := data.AsPrimitive(v)
		return TypedOperand{Type: p.Type, Value: p.Raw()}, nil
	case data.KindEnum:
		e, _ := data.AsEnum(v)
		if data.HasNullValue(v) {
			return TypedOperand{EnumType: e.Type}, nil
		}
		return TypedOperand{Type: edm.Unknown, EnumType: e.Type, Value: e.Member}, nil
	default:
		if data.HasNullValue(v) {
			return NullOperand(declared), nil
		}
		return TypedOperand{}, queryerrors.Evaluation("%s property %q cannot be used as a value", data.Kind(v), name)
	}
}

func (ev *evaluator) binary(n *BinaryExpr) (TypedOperand, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return TypedOperand{}, err
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return TypedOperand{}, err
	}

	switch n.Operator {
	case OpAnd, OpOr:
		return logical(n.Operator, left, right)
	case OpEqual, OpNotEqual:
		if left.IsNull() || right.IsNull() {
			same := left.IsNull() && right.IsNull()
			return BoolOperand(same == (n.Operator == OpEqual)), nil
		}
		eq, err := equalOperands(left, right)
		if err != nil {
			return TypedOperand{}, err
		}
		return BoolOperand(eq == (n.Operator == OpEqual)), nil
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		if left.IsNull() || right.IsNull() {
			return NullOperand(edm.Boolean), nil
		}
		c, err := compareOperands(left, right)
		if err != nil {
			return TypedOperand{}, err
		}
		switch n.Operator {
		case OpGreaterThan:
			return BoolOperand(c > 0), nil
		case OpGreaterThanOrEqual:
			return BoolOperand(c >= 0), nil
		case OpLessThan:
			return BoolOperand(c < 0), nil
		default:
			return BoolOperand(c <= 0), nil
		}
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return arithmetic(n.Operator, left, right)
	default:
		return TypedOperand{}, queryerrors.Evaluation("unsupported operator %q", n.Operator)
	}
}

// logical implements three-valued and/or.
func logical(op BinaryOperator, left, right TypedOperand) (TypedOperand, error) {
	for _, o := range []TypedOperand{left, right} {
		if !o.IsBoolean() {
			return TypedOperand{}, queryerrors.Evaluation("operator %s requires boolean operands, got %s", op, o.Type)
		}
	}

	if op == OpAnd {
		if (!left.IsNull() && !left.IsTrue()) || (!right.IsNull() && !right.IsTrue()) {
			return BoolOperand(false), nil
		}
		if left.IsNull() || right.IsNull() {
			return NullOperand(edm.Boolean), nil
		}
		return BoolOperand(true), nil
	}

	if left.IsTrue() || right.IsTrue() {
		return BoolOperand(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return NullOperand(edm.Boolean), nil
	}
	return BoolOperand(false), nil
}

func (ev *evaluator) unary(n *UnaryExpr) (TypedOperand, error) {
	operand, err := ev.eval(n.Operand)
	if err != nil {
		return TypedOperand{}, err
	}
	switch n.Operator {
	case OpNot:
		if !operand.IsBoolean() {
			return TypedOperand{}, queryerrors.Evaluation("operator not requires a boolean operand, got %s", operand.Type)
		}
		if operand.IsNull() {
			return operand, nil
		}
		return BoolOperand(!operand.IsTrue()), nil
	case OpMinus:
		return negate(operand)
	default:
		return TypedOperand{}, queryerrors.Evaluation("unsupported operator %q", n.Operator)
	}
}
