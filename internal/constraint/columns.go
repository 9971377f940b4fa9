package constraint

import (
	"fmt"
	"sort"

	"tabspec/internal/common"
	"tabspec/internal/diagnostic"
	"tabspec/internal/dtype"
)

// TypedColumnMapping validates a column name -> type mapping.
//
// Accepted inputs are dtype.Columns, dtype.Pairs (document order preserved),
// and plain maps keyed by string; plain maps are ordered by column name.
// Every key must be a string and every value one of the dtype tokens.
func TypedColumnMapping(v any) (dtype.Columns, error) {
	switch m := v.(type) {
	case nil:
		return dtype.Columns{}, nil
	case dtype.Columns:
		res := &diagnostic.Diagnostics{}
		for _, col := range m {
			if !col.Type.IsValid() {
				res.AddError("bad_dtype", fmt.Sprintf("column %q has invalid type %v", col.Name, col.Type), "", "dtypes")
			}
		}

		if err := res.Error(); err != nil {
			return nil, err
		}

		return m.Clone(), nil
	case dtype.Pairs:
		return columnsFromPairs(m)
	case map[string]dtype.DType:
		pairs := make(dtype.Pairs, 0, len(m))
		for k, t := range m {
			pairs = append(pairs, dtype.Pair{Key: k, Value: t})
		}

		return columnsFromPairs(sortPairs(pairs))
	case map[string]string:
		pairs := make(dtype.Pairs, 0, len(m))
		for k, t := range m {
			pairs = append(pairs, dtype.Pair{Key: k, Value: t})
		}

		return columnsFromPairs(sortPairs(pairs))
	case map[string]any:
		pairs := make(dtype.Pairs, 0, len(m))
		for k, t := range m {
			pairs = append(pairs, dtype.Pair{Key: k, Value: t})
		}

		return columnsFromPairs(sortPairs(pairs))
	case map[any]any:
		pairs := make(dtype.Pairs, 0, len(m))
		for k, t := range m {
			pairs = append(pairs, dtype.Pair{Key: k, Value: t})
		}

		return columnsFromPairs(sortPairs(pairs))
	default:
		return nil, diagnostic.NewValidationError("bad_dtypes",
			fmt.Sprintf("expected a mapping of column name to type, got %T", v), "", "dtypes")
	}
}

func columnsFromPairs(pairs dtype.Pairs) (dtype.Columns, error) {
	res := &diagnostic.Diagnostics{}
	out := make(dtype.Columns, 0, len(pairs))

	for _, p := range pairs {
		name, ok := p.Key.(string)
		if !ok {
			res.AddError("bad_column_name", fmt.Sprintf("column name %v is not a string", p.Key), "", "dtypes")
			continue
		}

		t, err := typeOf(p.Value)
		if err != nil {
			token := fmt.Sprint(p.Value)
			res.AddError("bad_dtype", fmt.Sprintf("column %q: %v", name, err), "", "dtypes",
				common.Closest(token, dtype.Tokens(), 2)...)

			continue
		}

		out = append(out, dtype.Column{Name: name, Type: t})
	}

	if err := res.Error(); err != nil {
		return nil, err
	}

	return out, nil
}

func typeOf(v any) (dtype.DType, error) {
	switch t := v.(type) {
	case dtype.DType:
		if !t.IsValid() {
			return 0, fmt.Errorf("invalid type %v", t)
		}

		return t, nil
	case string:
		return dtype.Parse(t)
	default:
		return 0, fmt.Errorf("expected a type name, got %T %v", v, v)
	}
}

func sortPairs(p dtype.Pairs) dtype.Pairs {
	sort.SliceStable(p, func(i, j int) bool {
		return fmt.Sprint(p[i].Key) < fmt.Sprint(p[j].Key)
	})

	return p
}
