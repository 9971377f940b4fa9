// Package constraint provides the validated value types a dataset
// specification is built from: natural numbers, absolute file paths, typed
// column mappings and lists whose every element satisfies one of those.
//
// Each constraint is a function from a loosely typed value (as decoded from
// YAML or passed by a caller) to the strict Go value, failing with a
// *diagnostic.ValidationError. Callers run the constraint on every
// assignment, so validation is a standing invariant of a field rather than a
// one-time check.
package constraint
