package query

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nlstn/go-odata-engine/internal/edm"
)

func TestTypedOperand_IsTrue(t *testing.T) {
	tests := []struct {
		name    string
		operand TypedOperand
		want    bool
	}{
		{"true", BoolOperand(true), true},
		{"false", BoolOperand(false), false},
		{"null boolean", NullOperand(edm.Boolean), false},
		{"non-boolean", TypedOperand{Type: edm.Int32, Value: int32(1)}, false},
		{"string true", TypedOperand{Type: edm.String, Value: "true"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.operand.IsTrue(); got != tt.want {
				t.Errorf("IsTrue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderCompare(t *testing.T) {
	now := time.Now()
	a, b := uuid.MustParse("00000000-0000-0000-0000-000000000001"), uuid.MustParse("00000000-0000-0000-0000-000000000002")

	tests := []struct {
		name        string
		left, right TypedOperand
		want        int
	}{
		{"null vs null", NullOperand(edm.Int32), NullOperand(edm.String), 0},
		{"null first", NullOperand(edm.Int32), TypedOperand{Type: edm.Int32, Value: int32(1)}, -1},
		{"value after null", TypedOperand{Type: edm.Int32, Value: int32(1)}, NullOperand(edm.Int32), 1},
		{"ints", TypedOperand{Type: edm.Int32, Value: int32(1)}, TypedOperand{Type: edm.Int32, Value: int32(2)}, -1},
		{"strings", TypedOperand{Type: edm.String, Value: "b"}, TypedOperand{Type: edm.String, Value: "a"}, 1},
		{"booleans", TypedOperand{Type: edm.Boolean, Value: false}, TypedOperand{Type: edm.Boolean, Value: true}, -1},
		{"times", TypedOperand{Type: edm.DateTimeOffset, Value: now}, TypedOperand{Type: edm.DateTimeOffset, Value: now.Add(time.Second)}, -1},
		{"guids", TypedOperand{Type: edm.Guid, Value: b}, TypedOperand{Type: edm.Guid, Value: a}, 1},
		// different runtime types are unordered, even when both are numbers
		{"int32 vs int64", TypedOperand{Type: edm.Int32, Value: int32(1)}, TypedOperand{Type: edm.Int64, Value: int64(2)}, 0},
		{"string vs int", TypedOperand{Type: edm.String, Value: "a"}, TypedOperand{Type: edm.Int32, Value: int32(2)}, 0},
		{"binary is not comparable", TypedOperand{Type: edm.Binary, Value: []byte{1}}, TypedOperand{Type: edm.Binary, Value: []byte{2}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderCompare(tt.left, tt.right); got != tt.want {
				t.Errorf("orderCompare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompareOperands_Promotion(t *testing.T) {
	c, err := compareOperands(
		TypedOperand{Type: edm.Byte, Value: uint8(200)},
		TypedOperand{Type: edm.SByte, Value: int8(-1)},
	)
	if err != nil || c != 1 {
		t.Errorf("compare Byte/SByte = %d, %v", c, err)
	}

	c, err = compareOperands(
		TypedOperand{Type: edm.Single, Value: float32(1.5)},
		TypedOperand{Type: edm.Int64, Value: int64(2)},
	)
	if err != nil || c != -1 {
		t.Errorf("compare Single/Int64 = %d, %v", c, err)
	}

	if _, err := compareOperands(
		TypedOperand{Type: edm.Guid, Value: uuid.New()},
		TypedOperand{Type: edm.String, Value: "x"},
	); err == nil {
		t.Error("expected error comparing Guid with String")
	}
}

func TestArithmetic_Overflow(t *testing.T) {
	_, err := arithmetic(OpAdd,
		TypedOperand{Type: edm.Byte, Value: uint8(255)},
		TypedOperand{Type: edm.Byte, Value: uint8(1)},
	)
	if err == nil {
		t.Error("expected overflow error for Edm.Byte")
	}
}

func TestArithmetic_SByteByteWidensToInt16(t *testing.T) {
	tests := []struct {
		name        string
		op          BinaryOperator
		left, right TypedOperand
		want        int16
	}{
		{"sbyte + byte", OpAdd, TypedOperand{Type: edm.SByte, Value: int8(-5)}, TypedOperand{Type: edm.Byte, Value: uint8(1)}, -4},
		{"byte - sbyte", OpSub, TypedOperand{Type: edm.Byte, Value: uint8(255)}, TypedOperand{Type: edm.SByte, Value: int8(-128)}, 383},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := arithmetic(tt.op, tt.left, tt.right)
			if err != nil {
				t.Fatalf("arithmetic() error = %v", err)
			}
			if got.Type != edm.Int16 {
				t.Errorf("type = %v, want Edm.Int16", got.Type)
			}
			if got.Value != tt.want {
				t.Errorf("value = %v, want %d", got.Value, tt.want)
			}
		})
	}
}
