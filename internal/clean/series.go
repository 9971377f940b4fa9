package clean

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/expr-lang/expr"

	"tabspec/internal/common"
	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
	"tabspec/internal/table"
)

// SeriesValidator cleans one column of a frame.
type SeriesValidator struct {
	column string
	rules  *compiled
	logger *slog.Logger
}

// NewSeriesValidator checks rules and returns a validator for column.
func NewSeriesValidator(column string, rules ColumnRules, logger *slog.Logger) (*SeriesValidator, error) {
	c, err := rules.compile(column)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SeriesValidator{column: column, rules: c, logger: logger}, nil
}

// Column returns the name of the cleaned column.
func (s *SeriesValidator) Column() string { return s.column }

// Apply cleans the column in f. Rows dropped by a rule are dropped from every
// column of f.
func (s *SeriesValidator) Apply(f *table.Frame) error {
	col, ok := f.Column(s.column)
	if !ok {
		return diagnostic.NewValidationError("unknown_column",
			fmt.Sprintf("column %q has rules but is not in the table", s.column), "", s.column,
			common.Closest(s.column, f.Names(), 3)...)
	}

	before := f.NumRows()
	r := s.rules

	if (r.Min != nil || r.Max != nil) && col.Type != dtype.Integer && col.Type != dtype.Float {
		return diagnostic.NewValidationError("bad_range",
			fmt.Sprintf("min and max need a numeric column, %q is %s", s.column, col.Type.Token()), "", s.column)
	}

	if r.regex != nil && col.Type != dtype.Text {
		return diagnostic.NewValidationError("bad_regex",
			fmt.Sprintf("regex needs a text column, %q is %s", s.column, col.Type.Token()), "", s.column)
	}

	if r.unique != nil {
		if err := s.filter(f, col, func(v any) bool {
			if v == nil {
				return false
			}

			_, ok := r.unique[table.FormatValue(v)]

			return ok
		}); err != nil {
			return err
		}
	}

	if r.Min != nil || r.Max != nil {
		if err := s.filter(f, col, func(v any) bool {
			return v == nil || common.IsInRange(r.low, toFloat(v), r.high)
		}); err != nil {
			return err
		}
	}

	if r.DropDuplicates {
		seen := map[any]struct{}{}

		if err := s.filter(f, col, func(v any) bool {
			if _, dup := seen[v]; dup {
				return false
			}

			seen[v] = struct{}{}

			return true
		}); err != nil {
			return err
		}
	}

	if r.DropNA {
		if err := s.filter(f, col, func(v any) bool { return v != nil }); err != nil {
			return err
		}
	}

	if r.regex != nil {
		if err := s.filter(f, col, func(v any) bool {
			str, ok := v.(string)
			return !ok || r.regex.MatchString(str)
		}); err != nil {
			return err
		}
	}

	for i, p := range r.converters {
		out, err := expr.Run(p, seriesEnv{Column: col.Values})
		if err != nil {
			return fmt.Errorf("converter %q on column %q failed: %w", r.Converters[i], s.column, err)
		}

		values, ok := asList(out)
		if !ok || len(values) != col.Len() {
			return fmt.Errorf("converter %q on column %q must return a list of %d values, got %T",
				r.Converters[i], s.column, col.Len(), out)
		}

		if keep, ok := asMask(values); ok {
			if err := f.Filter(keep); err != nil {
				return err
			}

			continue
		}

		col.Values = values
		col.Type = inferType(values)
	}

	if len(r.postprocessors) > 0 {
		for row, v := range col.Values {
			if v == nil {
				continue
			}

			for i, p := range r.postprocessors {
				out, err := expr.Run(p, cellEnv{Value: v})
				if err != nil {
					return fmt.Errorf("postprocessor %q on column %q row %d failed: %w",
						r.Postprocessors[i], s.column, row, err)
				}

				v = normalize(out)
			}

			col.Values[row] = v
		}

		col.Type = inferType(col.Values)
	}

	s.logger.Debug("cleaned column", "column", s.column, "rows_before", before, "rows_after", f.NumRows())

	return nil
}

func (s *SeriesValidator) filter(f *table.Frame, col *table.Column, keep func(v any) bool) error {
	mask := make([]bool, col.Len())
	for i, v := range col.Values {
		mask[i] = keep(v)
	}

	return f.Filter(mask)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// asList flattens any slice result of an expression into []any.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// asMask reports whether every value is a boolean.
func asMask(values []any) ([]bool, bool) {
	mask := make([]bool, len(values))

	for i, v := range values {
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}

		mask[i] = b
	}

	return mask, true
}

// normalize maps expression results onto column value types.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// inferType normalizes values in place and returns the column type they
// share. Mixed columns become text.
func inferType(values []any) dtype.DType {
	var t dtype.DType

	for i, v := range values {
		v = normalize(v)
		values[i] = v

		var vt dtype.DType

		switch v.(type) {
		case nil:
			continue
		case int64:
			vt = dtype.Integer
		case float64:
			vt = dtype.Float
		case time.Time:
			vt = dtype.Date
		default:
			vt = dtype.Text
		}

		switch {
		case !t.IsValid():
			t = vt
		case t != vt && t.IsNumber() && vt.IsNumber():
			t = dtype.Float
		case t != vt:
			t = dtype.Text
		}
	}

	if !t.IsValid() {
		return dtype.Text
	}

	for i, v := range values {
		if v == nil {
			continue
		}

		switch t {
		case dtype.Float:
			values[i] = toFloat(v)
		case dtype.Text:
			values[i] = table.FormatValue(v)
		}
	}

	return t
}
