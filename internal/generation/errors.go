package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when card generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate flashcards")

	// ErrUnreachable is returned when the generation service cannot be reached at all
	ErrUnreachable = errors.New("generation service unreachable")

	// ErrInvalidResponse is returned when a response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// FailedError carries the status and detail message of a rejected generation
// request.
type FailedError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface for FailedError.
func (e *FailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", ErrGenerationFailed, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s", ErrGenerationFailed, e.Message)
}

// Unwrap lets errors.Is match ErrGenerationFailed.
func (e *FailedError) Unwrap() error {
	return ErrGenerationFailed
}
