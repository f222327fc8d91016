package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// More specific validation errors wrap it so callers can classify them
	// with a single errors.Is check.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyField is returned when a required card field is empty after trimming.
	ErrEmptyField = fmt.Errorf("%w: required field is empty", ErrValidation)

	// ErrUnsupportedFormat is returned when a file extension is not accepted
	// by the operation it was given to.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrValidation)

	// ErrEmptyStudySetID is returned when an operation needs a persisted study set.
	ErrEmptyStudySetID = fmt.Errorf("%w: study set ID cannot be empty", ErrValidation)

	// ErrEmptyCardID is returned when an operation needs a card identity.
	ErrEmptyCardID = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)
)

// ValidationError describes which field failed validation and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping err.
// A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
