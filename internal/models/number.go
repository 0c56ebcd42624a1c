package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a decoded JSON value into a float64 the way the platform's
// web client did: null and empty strings become 0, booleans 0 or 1, numeric
// strings are parsed, and everything else is NaN.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// ClampCount converts a raw count into a non-negative integer.
// Non-finite and non-positive inputs become 0; fractions are truncated downward.
func ClampCount(c float64) int {
	if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
		return 0
	}
	if c >= float64(math.MaxInt64) {
		return math.MaxInt
	}
	return int(math.Floor(c))
}
