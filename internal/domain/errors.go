package domain

import "fmt"

// ValidationError reports a cross-message check failure (UETR mismatch,
// missing required field). It fails the eligibility gate chain; it never
// aborts a run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
