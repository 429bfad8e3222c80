package edm

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sosodev/duration"
)

// Normalize converts value into the canonical Go representation of kind:
//
//	Binary          []byte
//	Boolean         bool
//	Byte            uint8
//	SByte           int8
//	Int16           int16
//	Int32           int32
//	Int64           int64
//	Single          float32
//	Double          float64
//	Decimal         decimal.Decimal
//	String          string
//	Guid            uuid.UUID
//	Date            time.Time (midnight UTC)
//	DateTimeOffset  time.Time
//	TimeOfDay       time.Time (on 0000-01-01 UTC)
//	Duration        time.Duration
//
// A nil value (or nil pointer) normalizes to nil without error.
func Normalize(kind PrimitiveKind, value interface{}) (interface{}, error) {
	value = deref(value)
	if value == nil {
		return nil, nil
	}

	switch kind {
	case Boolean:
		return toBool(value)
	case Byte:
		n, err := toInt64(value, kind)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > math.MaxUint8 {
			return nil, fmt.Errorf("value %d out of range for %s", n, kind)
		}
		return uint8(n), nil
	case SByte:
		n, err := toInt64(value, kind)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt8 || n > math.MaxInt8 {
			return nil, fmt.Errorf("value %d out of range for %s", n, kind)
		}
		return int8(n), nil
	case Int16:
		n, err := toInt64(value, kind)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, fmt.Errorf("value %d out of range for %s", n, kind)
		}
		return int16(n), nil
	case Int32:
		n, err := toInt64(value, kind)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d out of range for %s", n, kind)
		}
		return int32(n), nil
	case Int64:
		return toInt64(value, kind)
	case Single:
		f, err := toFloat64(value, kind)
		if err != nil {
			return nil, err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, fmt.Errorf("value %g out of range for %s", f, kind)
		}
		return float32(f), nil
	case Double:
		return toFloat64(value, kind)
	case Decimal:
		return toDecimal(value)
	case String:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case Guid:
		return toGUID(value)
	case Binary:
		return toBinary(value)
	case Date:
		t, err := toTime(value, kind)
		if err != nil {
			return nil, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case DateTimeOffset:
		return toTime(value, kind)
	case TimeOfDay:
		return toTimeOfDay(value)
	case Duration:
		return toDuration(value)
	default:
		return nil, fmt.Errorf("unsupported EDM primitive type: %s", kind)
	}
	return nil, fmt.Errorf("cannot convert %T to %s", value, kind)
}

func deref(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func toBool(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse '%s' as Edm.Boolean: %w", v, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("cannot convert %v (%T) to Edm.Boolean", value, value)
}

func toInt64(value interface{}, kind PrimitiveKind) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range for %s", v, kind)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range for %s", v, kind)
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v), kind)
	case float64:
		return floatToInt64(v, kind)
	case decimal.Decimal:
		if !v.IsInteger() {
			return 0, fmt.Errorf("value %s is not integral for %s", v, kind)
		}
		return v.IntPart(), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse '%s' as %s: %w", v, kind, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot convert %T to %s", value, kind)
}

func floatToInt64(f float64, kind PrimitiveKind) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("value %g is not integral for %s", f, kind)
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return 0, fmt.Errorf("value %g out of range for %s", f, kind)
	}
	return int64(f), nil
}

func toFloat64(value interface{}, kind PrimitiveKind) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := toInt64(v, kind)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse '%s' as %s: %w", v, kind, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %T to %s", value, kind)
}

func toDecimal(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot parse '%s' as Edm.Decimal: %w", v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := toInt64(v, Decimal)
		if err != nil {
			return nil, err
		}
		return decimal.NewFromInt(n), nil
	}
	return nil, fmt.Errorf("cannot convert %T to Edm.Decimal", value)
}

func toGUID(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if len(v) == 16 {
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, err
			}
			return u, nil
		}
		return parseGUID(string(v))
	case string:
		return parseGUID(v)
	}
	return nil, fmt.Errorf("cannot convert %T to Edm.Guid", value)
}

func parseGUID(s string) (interface{}, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("cannot parse '%s' as Edm.Guid: %w", s, err)
	}
	return u, nil
}

func toBinary(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	case string:
		if b, err := base64.StdEncoding.DecodeString(v); err == nil {
			return b, nil
		}
		b, err := base64.URLEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse '%s' as Edm.Binary: %w", v, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("cannot convert %T to Edm.Binary", value)
}

// timeLayouts lists the accepted textual timestamp formats, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func toTime(value interface{}, kind PrimitiveKind) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse '%s' as %s", v, kind)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to %s", value, kind)
}

func toTimeOfDay(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case time.Time:
		return time.Date(0, 1, 1, v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC), nil
	case time.Duration:
		if v < 0 || v >= 24*time.Hour {
			return nil, fmt.Errorf("value %s out of range for Edm.TimeOfDay", v)
		}
		return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(v), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{"15:04:05.999999999", "15:04"} {
			if t, err := time.Parse(layout, s); err == nil {
				return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
			}
		}
		return nil, fmt.Errorf("cannot parse '%s' as Edm.TimeOfDay", v)
	}
	return nil, fmt.Errorf("cannot convert %T to Edm.TimeOfDay", value)
}

func toDuration(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case string:
		return ParseDuration(v)
	}
	return nil, fmt.Errorf("cannot convert %T to Edm.Duration", value)
}

// ParseDuration parses an ISO 8601 duration ("P1DT2H") and, failing that,
// a Go duration string ("26h").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := duration.Parse(s); err == nil {
		return d.ToTimeDuration(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("cannot parse '%s' as Edm.Duration", s)
	}
	return d, nil
}
