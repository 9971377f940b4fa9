package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tabspec/internal/dtype"
)

// dateLayouts are tried in order when parsing date columns.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01/02/2006",
}

// ParseValue converts one non-missing text cell to t.
func ParseValue(s string, t dtype.DType) (any, error) {
	s = strings.TrimSpace(s)

	switch t {
	case dtype.Integer:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", s)
		}

		return n, nil
	case dtype.Float:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}

		return x, nil
	case dtype.Date:
		for _, layout := range dateLayouts {
			if tm, err := time.Parse(layout, s); err == nil {
				return tm, nil
			}
		}

		return nil, fmt.Errorf("%q is not a date", s)
	default:
		return s, nil
	}
}

// coerce converts text values to t in place. On the first failure values are
// left untouched and the failing row is returned with the error.
func coerce(values []any, t dtype.DType) (int, error) {
	if t == dtype.Text {
		return 0, nil
	}

	out := make([]any, len(values))

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}

		parsed, err := ParseValue(s, t)
		if err != nil {
			return i, err
		}

		out[i] = parsed
	}

	copy(values, out)

	return 0, nil
}
