package diagnostic

import (
	"errors"
	"strings"
)

// ValidationError reports one or more specification invariant violations.
// It is raised where the violating value is computed or assigned and is never
// coerced away by the validator.
type ValidationError struct {
	Diagnostics Diagnostics
}

// NewValidationError builds a ValidationError holding a single error diagnostic.
func NewValidationError(code, message, dataset, field string, suggestions ...string) *ValidationError {
	ve := &ValidationError{}
	ve.Diagnostics.AddError(code, message, dataset, field, suggestions...)

	return ve
}

// Error implements error.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Diagnostics.Errors))
	for _, d := range e.Diagnostics.Errors {
		parts = append(parts, d.String())
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// HasCode reports whether any of the wrapped diagnostics carries the given code.
func (e *ValidationError) HasCode(code string) bool {
	for _, d := range e.Diagnostics.Errors {
		if d.Code == code {
			return true
		}
	}

	return false
}

// Attribute returns a copy of the error with every diagnostic that lacks a
// dataset or field attributed to the given ones.
func (e *ValidationError) Attribute(dataset, field string) *ValidationError {
	out := &ValidationError{}
	for _, d := range e.Diagnostics.Errors {
		if d.Dataset == "" {
			d.Dataset = dataset
		}

		if d.Field == "" {
			d.Field = field
		}

		out.Diagnostics.Errors = append(out.Diagnostics.Errors, d)
	}

	return out
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}
