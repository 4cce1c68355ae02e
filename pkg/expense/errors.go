package expense

import (
	"errors"
	"fmt"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrEmptyDescription  = errors.New("description must not be empty")
	ErrInvalidDate       = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrMissingField      = errors.New("required field is missing")

	// ErrPersist wraps failures to write the backing file. The in-memory
	// change that triggered the write is kept.
	ErrPersist = errors.New("failed to persist expenses")
)

// ValidationError reports a Record field that violates its invariants
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
