package edm

import (
	"fmt"
	"reflect"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FromGoType infers the primitive kind from a Go type.
func FromGoType(goType reflect.Type) (PrimitiveKind, error) {
	if goType == nil {
		return Unknown, fmt.Errorf("nil type")
	}

	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	switch {
	case goType == timeType:
		return DateTimeOffset, nil
	case goType == durationType:
		return Duration, nil
	case goType.PkgPath() == "github.com/shopspring/decimal" && goType.Name() == "Decimal":
		return Decimal, nil
	case goType.PkgPath() == "github.com/google/uuid" && goType.Name() == "UUID":
		return Guid, nil
	}

	if (goType.Kind() == reflect.Slice || goType.Kind() == reflect.Array) && goType.Elem().Kind() == reflect.Uint8 {
		return Binary, nil
	}

	switch goType.Kind() {
	case reflect.String:
		return String, nil
	case reflect.Int, reflect.Int32, reflect.Uint16:
		return Int32, nil
	case reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return Int64, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Int8:
		return SByte, nil
	case reflect.Uint8:
		return Byte, nil
	case reflect.Float32:
		return Single, nil
	case reflect.Float64:
		return Double, nil
	case reflect.Bool:
		return Boolean, nil
	default:
		return Unknown, fmt.Errorf("unsupported Go type: %s", goType.String())
	}
}

// FromGoValue infers the kind of value and normalizes it.
func FromGoValue(value interface{}) (PrimitiveKind, interface{}, error) {
	if value == nil {
		return Unknown, nil, fmt.Errorf("cannot infer type from nil value")
	}
	kind, err := FromGoType(reflect.TypeOf(value))
	if err != nil {
		return Unknown, nil, err
	}
	normalized, err := Normalize(kind, value)
	if err != nil {
		return Unknown, nil, err
	}
	return kind, normalized, nil
}
