package clean

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tabspec/internal/diagnostic"
	"tabspec/internal/schema"
	"tabspec/internal/table"
)

// FrameValidator cleans a whole frame: every ruled column, then duplicate rows.
type FrameValidator struct {
	series         []*SeriesValidator
	dropDuplicates bool
	logger         *slog.Logger
}

// NewFrameValidator checks every column's rules before returning.
func NewFrameValidator(rules Rules, dropDuplicates bool, logger *slog.Logger) (*FrameValidator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := &FrameValidator{dropDuplicates: dropDuplicates, logger: logger}
	res := &diagnostic.Diagnostics{}

	for _, name := range rules.Columns() {
		s, err := NewSeriesValidator(name, rules[name], logger)
		if err != nil {
			mergeInto(res, err)
			continue
		}

		v.series = append(v.series, s)
	}

	if err := res.Error(); err != nil {
		return nil, err
	}

	return v, nil
}

// FromSpecification builds a FrameValidator from the column_rules and
// drop_duplicates keys of spec. drop_duplicates defaults to true.
func FromSpecification(spec schema.Specification, logger *slog.Logger) (*FrameValidator, error) {
	rules, err := ParseRules(spec[schema.KeyColumnRules])
	if err != nil {
		return nil, err
	}

	dropDuplicates := true

	if raw, ok := spec[schema.KeyDropDuplicates]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return nil, diagnostic.NewValidationError("bad_rules",
				fmt.Sprintf("drop_duplicates must be a boolean, got %T", raw), "", schema.KeyDropDuplicates)
		}

		dropDuplicates = b
	}

	return NewFrameValidator(rules, dropDuplicates, logger)
}

// Clean returns a cleaned copy of f.
func (v *FrameValidator) Clean(f *table.Frame) (*table.Frame, error) {
	out := f.Clone()

	for _, s := range v.series {
		if err := s.Apply(out); err != nil {
			return nil, err
		}
	}

	if v.dropDuplicates {
		before := out.NumRows()

		if err := out.Filter(uniqueRows(out)); err != nil {
			return nil, err
		}

		v.logger.Debug("dropped duplicate rows", "count", before-out.NumRows())
	}

	return out, nil
}

// uniqueRows marks the first occurrence of every distinct row.
func uniqueRows(f *table.Frame) []bool {
	keep := make([]bool, f.NumRows())
	seen := make(map[string]struct{}, f.NumRows())

	var sb strings.Builder

	for i := range keep {
		sb.Reset()

		for _, v := range f.Row(i) {
			if v == nil {
				sb.WriteString("\x00NA")
			} else {
				sb.WriteString(table.FormatValue(v))
			}

			sb.WriteByte('\x1f')
		}

		key := sb.String()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		keep[i] = true
	}

	return keep
}

func mergeInto(res *diagnostic.Diagnostics, err error) {
	var ve *diagnostic.ValidationError
	if errors.As(err, &ve) {
		res.Merge(ve.Diagnostics)
		return
	}

	res.AddError("invalid", err.Error(), "", "")
}
