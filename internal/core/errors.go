package core

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced entity does not exist in the caller's
// company scope. Callers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ValidationError rejects bad input before any state is touched. The ledger
// is guaranteed untouched whenever one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for callers outside this
// package.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
