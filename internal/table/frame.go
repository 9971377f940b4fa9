package table

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"tabspec/internal/common"
	"tabspec/internal/dtype"
)

// ErrShape is returned when columns or frames do not line up.
var ErrShape = errors.New("frame shape mismatch")

// Column is one named, typed column. A nil value is missing (NA). Non-nil
// values are int64, float64, string or time.Time according to Type.
type Column struct {
	Name   string
	Type   dtype.DType
	Values []any
}

// Len returns the number of values.
func (c *Column) Len() int { return len(c.Values) }

// Clone returns an independent copy.
func (c *Column) Clone() *Column {
	return &Column{Name: c.Name, Type: c.Type, Values: slices.Clone(c.Values)}
}

// Frame is an in-memory table of equally long columns.
type Frame struct {
	Columns []*Column
}

// New builds a Frame, checking that column names are unique and lengths agree.
func New(cols ...*Column) (*Frame, error) {
	seen := make(map[string]bool, len(cols))

	for _, c := range cols {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name)
		}

		seen[c.Name] = true

		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: column %q has %d values, %q has %d",
				ErrShape, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
	}

	return &Frame{Columns: cols}, nil
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	if len(f.Columns) == 0 {
		return 0
	}

	return f.Columns[0].Len()
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.Columns) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.Name
	}

	return out
}

// Column returns the column called name.
func (f *Frame) Column(name string) (*Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}

// Row returns the values of row i across all columns.
func (f *Frame) Row(i int) []any {
	out := make([]any, len(f.Columns))
	for j, c := range f.Columns {
		out[j] = c.Values[i]
	}

	return out
}

// Filter keeps the rows whose keep entry is true.
func (f *Frame) Filter(keep []bool) error {
	if len(keep) != f.NumRows() {
		return fmt.Errorf("%w: filter of %d entries over %d rows", ErrShape, len(keep), f.NumRows())
	}

	for _, c := range f.Columns {
		c.Values = filterValues(c.Values, keep)
	}

	return nil
}

// Head returns a copy of the first n rows.
func (f *Frame) Head(n int) *Frame {
	n = min(n, f.NumRows())

	out := &Frame{Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		out.Columns[i] = &Column{Name: c.Name, Type: c.Type, Values: slices.Clone(c.Values[:n])}
	}

	return out
}

// Clone returns an independent copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		out.Columns[i] = c.Clone()
	}

	return out
}

// Concat appends the rows of frames in order. Frames must have the same
// column names in the same order. A column typed differently across frames
// is converted to text.
func Concat(frames ...*Frame) (*Frame, error) {
	first, ok := common.First(frames)
	if !ok {
		return &Frame{}, nil
	}

	out := first.Clone()

	for k, f := range frames[1:] {
		if !slices.Equal(out.Names(), f.Names()) {
			return nil, fmt.Errorf("%w: frame %d has columns %v, expected %v", ErrShape, k+1, f.Names(), out.Names())
		}

		for i, c := range f.Columns {
			dst := out.Columns[i]

			if dst.Type != c.Type {
				toText(dst)

				src := c.Clone()
				toText(src)
				dst.Values = append(dst.Values, src.Values...)

				continue
			}

			dst.Values = append(dst.Values, c.Values...)
		}
	}

	return out, nil
}

func toText(c *Column) {
	if c.Type == dtype.Text {
		return
	}

	for i, v := range c.Values {
		if v != nil {
			c.Values[i] = FormatValue(v)
		}
	}

	c.Type = dtype.Text
}

func filterValues(values []any, keep []bool) []any {
	out := values[:0]

	for i, v := range values {
		if keep[i] {
			out = append(out, v)
		}
	}

	clear(values[len(out):])

	return out
}

// FormatValue renders a column value as text; NA renders as the empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}

		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
