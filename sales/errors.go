/*
errors.go - Centralized error types for the sales engine

PURPOSE:
  All error types in one place. Stores and handlers wrap these with
  additional context via fmt.Errorf("...: %w", err).

ERROR CATEGORIES:
  1. Not-found errors  - Operations referencing absent identifiers
  2. Validation errors - Malformed input, rejected before the core runs
  3. Storage errors    - Persistence-level failures

The pure functions (period generation, aggregation, tier resolution) are
total over well-typed input and never return errors themselves.
*/
package sales

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSaleNotFound is returned by get/update/delete on an absent sale ID.
	// No partial mutation occurs.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrPreferenceNotFound is returned when a preference key has no value.
	ErrPreferenceNotFound = errors.New("preference not found")

	// ErrInvalidPeriod is returned for unknown period families or labels.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrValidation is the base of all input-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrStorageFailure wraps persistence-level failures. The caller's prior
	// state is left unchanged and no retry is attempted.
	ErrStorageFailure = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports which field was malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrPreferenceNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidPeriod)
}
