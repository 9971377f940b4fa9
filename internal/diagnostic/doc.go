// Package diagnostic provides structured errors and warnings produced while
// validating dataset specifications, cleaning rules and loaded tables.
//
// Key capabilities:
//   - Coded error and warning entries tied to a dataset and a field
//   - "did you mean" suggestions for misspelled tokens
//   - ValidationError, the single error type for specification violations
package diagnostic
