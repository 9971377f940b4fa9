package constraint

import (
	"fmt"
	"math"

	"tabspec/internal/diagnostic"
)

// NaturalNumber validates that v is an integer >= 1.
// Integral floats are accepted since JSON and some YAML decoders produce them.
func NaturalNumber(v any) (int, error) {
	n, ok := asInt(v)
	if !ok {
		return 0, diagnostic.NewValidationError("not_natural",
			fmt.Sprintf("expected a natural number, got %T %v", v, v), "", "")
	}

	if n < 1 {
		return 0, diagnostic.NewValidationError("not_natural",
			fmt.Sprintf("expected a natural number (>= 1), got %d", n), "", "")
	}

	return n, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}

		return int(n), true
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt || n < math.MinInt {
			return 0, false
		}

		return int(n), true
	default:
		return 0, false
	}
}
