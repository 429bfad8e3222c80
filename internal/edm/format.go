package edm

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sosodev/duration"
)

// Fixed layouts for the temporal kinds.
const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04:05.999999999"
)

// FormatValue renders a normalized value as text: temporal kinds use fixed
// ISO 8601 layouts, binary is base64, everything else its natural form.
// A nil value renders as the empty string.
func FormatValue(kind PrimitiveKind, value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case time.Time:
		switch kind {
		case Date:
			return v.Format(DateLayout)
		case TimeOfDay:
			return v.Format(TimeOfDayLayout)
		default:
			return v.Format(time.RFC3339Nano)
		}
	case time.Duration:
		return FormatDuration(v)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case decimal.Decimal:
		return v.String()
	case uuid.UUID:
		return v.String()
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// FormatDuration renders d as an ISO 8601 duration, e.g. "PT1H30M".
func FormatDuration(d time.Duration) string {
	return duration.FromTimeDuration(d).String()
}
