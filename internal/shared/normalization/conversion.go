package normalization

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AsString trims and returns the string representation of value when possible.
func AsString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// AsNumber reports whether value is a JSON number and returns it.
// Numeric strings are not numbers here.
func AsNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return 0, false
		}
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	}
	return 0, false
}

// AsFloat64 coerces numeric values (including numeric strings) into float64.
func AsFloat64(value any) float64 {
	if number, ok := AsNumber(value); ok {
		return number
	}
	if s, ok := value.(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// AsInterfaceSlice normalizes different collection types into a []any.
func AsInterfaceSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []map[string]any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, entry)
		}
		return items, true
	default:
		return nil, false
	}
}

// AsMap returns value as a JSON object when it is one.
func AsMap(value any) (map[string]any, bool) {
	typed, ok := value.(map[string]any)
	return typed, ok && typed != nil
}

// Stringify renders scalar identifiers the way they appear in URLs.
// Integral floats lose the fractional part and never use exponent notation.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	}
	if number, ok := AsNumber(value); ok {
		if number == math.Trunc(number) && math.Abs(number) < 1e18 {
			return strconv.FormatInt(int64(number), 10)
		}
		return strconv.FormatFloat(number, 'f', -1, 64)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

// MapFromPayload unwraps the common {"data": {...}} envelope of detail responses.
func MapFromPayload(value any) map[string]any {
	typed, ok := AsMap(value)
	if !ok {
		return nil
	}
	if data, ok := AsMap(typed["data"]); ok {
		return data
	}
	return typed
}
