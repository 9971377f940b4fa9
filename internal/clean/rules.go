package clean

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"tabspec/internal/diagnostic"
	"tabspec/internal/schema"
)

// ColumnRules are the cleaning rules of one column.
type ColumnRules struct {
	UniqueValues   []any    `yaml:"unique_values,omitempty"`
	Min            *float64 `yaml:"min,omitempty"`
	Max            *float64 `yaml:"max,omitempty"`
	DropDuplicates bool     `yaml:"drop_duplicates,omitempty"`
	DropNA         bool     `yaml:"drop_na,omitempty"`
	Regex          string   `yaml:"regex,omitempty"`
	Converters     []string `yaml:"converters,omitempty"`
	Postprocessors []string `yaml:"postprocessors,omitempty"`
}

// compiled is a checked ColumnRules, ready to run.
type compiled struct {
	ColumnRules

	unique         map[string]struct{}
	low, high      float64
	regex          *regexp.Regexp
	converters     []*vm.Program
	postprocessors []*vm.Program
}

// Validate checks the rules without touching any data.
func (r ColumnRules) Validate(column string) error {
	_, err := r.compile(column)
	return err
}

func (r ColumnRules) compile(column string) (*compiled, error) {
	res := &diagnostic.Diagnostics{}
	c := &compiled{ColumnRules: r, low: math.Inf(-1), high: math.Inf(1)}

	if r.Min != nil {
		c.low = *r.Min
	}

	if r.Max != nil {
		c.high = *r.Max
	}

	if c.low > c.high {
		res.AddError("bad_range", fmt.Sprintf("min %v is greater than max %v", c.low, c.high), "", column)
	}

	if r.UniqueValues != nil {
		c.unique = make(map[string]struct{}, len(r.UniqueValues))
		for _, u := range r.UniqueValues {
			c.unique[fmt.Sprint(u)] = struct{}{}
		}
	}

	if r.Regex != "" {
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			res.AddError("bad_regex", fmt.Sprintf("regex %q: %v", r.Regex, err), "", column)
		}

		c.regex = re
	}

	for _, src := range r.Converters {
		p, err := expr.Compile(src, expr.Env(seriesEnv{}))
		if err != nil {
			res.AddError("bad_expression", fmt.Sprintf("converter %q: %v", src, err), "", column)
			continue
		}

		c.converters = append(c.converters, p)
	}

	for _, src := range r.Postprocessors {
		p, err := expr.Compile(src, expr.Env(cellEnv{}))
		if err != nil {
			res.AddError("bad_expression", fmt.Sprintf("postprocessor %q: %v", src, err), "", column)
			continue
		}

		c.postprocessors = append(c.postprocessors, p)
	}

	if err := res.Error(); err != nil {
		return nil, err
	}

	return c, nil
}

// seriesEnv is what a converter expression sees.
type seriesEnv struct {
	Column []any `expr:"column"`
}

// cellEnv is what a postprocessor expression sees.
type cellEnv struct {
	Value any `expr:"value"`
}

// Rules maps column names to their rules.
type Rules map[string]ColumnRules

// Columns returns the ruled column names, sorted.
func (r Rules) Columns() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// ParseRules decodes a column_rules value as found in a specification.
// Unknown rule names are rejected.
func ParseRules(raw any) (Rules, error) {
	if raw == nil {
		return Rules{}, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column rules: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rules Rules
	if err := dec.Decode(&rules); err != nil {
		return nil, diagnostic.NewValidationError("bad_rules",
			fmt.Sprintf("invalid column rules: %v", err), "", schema.KeyColumnRules)
	}

	if rules == nil {
		rules = Rules{}
	}

	return rules, nil
}
