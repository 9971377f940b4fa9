package constraint

import (
	"errors"
	"fmt"
	"reflect"

	"tabspec/internal/diagnostic"
)

// Element validates one value and returns its strict form.
type Element[T any] func(v any) (T, error)

// List validates that v is a non-empty sequence whose every element
// satisfies elem. Failures name the offending index.
func List[T any](v any, elem Element[T]) ([]T, error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, diagnostic.NewValidationError("not_a_list", fmt.Sprintf("expected a list, got %T", v), "", "")
	}

	if len(items) == 0 {
		return nil, diagnostic.NewValidationError("empty_list", "list must not be empty", "", "")
	}

	res := &diagnostic.Diagnostics{}
	out := make([]T, 0, len(items))

	for i, item := range items {
		val, err := elem(item)
		if err != nil {
			appendIndexed(res, err, i)
			continue
		}

		out = append(out, val)
	}

	if err := res.Error(); err != nil {
		return nil, err
	}

	return out, nil
}

// OneOrMany accepts either a single value satisfying elem or a list of them.
// The boolean result reports whether v was a list.
func OneOrMany[T any](v any, elem Element[T]) ([]T, bool, error) {
	if _, ok := asSlice(v); ok {
		out, err := List(v, elem)
		return out, true, err
	}

	single, err := elem(v)
	if err != nil {
		return nil, false, err
	}

	return []T{single}, false, nil
}

// NaturalElement is NaturalNumber as a list element constraint.
func NaturalElement(v any) (int, error) {
	return NaturalNumber(v)
}

// PathElement returns AbsoluteFilePath as a list element constraint.
func PathElement(mustExist bool) Element[string] {
	return func(v any) (string, error) {
		return AbsoluteFilePath(v, mustExist)
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}

		return out, true
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}

		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

func appendIndexed(res *diagnostic.Diagnostics, err error, index int) {
	var ve *diagnostic.ValidationError
	if !errors.As(err, &ve) {
		res.AddError("invalid_element", fmt.Sprintf("element %d: %v", index, err), "", "")
		return
	}

	for _, d := range ve.Diagnostics.Errors {
		d.Message = fmt.Sprintf("element %d: %s", index, d.Message)
		res.Errors = append(res.Errors, d)
	}
}
