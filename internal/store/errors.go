package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUnauthenticated is returned when there is no active session or the
	// session's user does not own the record being accessed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPartialCascade is wrapped by CascadeError when a study set was deleted
	// but some of its cards could not be.
	ErrPartialCascade = errors.New("cascade delete left cards behind")

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrStudySetNotFound indicates that the requested study set does not exist.
	ErrStudySetNotFound = fmt.Errorf("%w: study set", ErrNotFound)

	// ErrCardNotFound indicates that the requested card does not exist in the store.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "study_set", "card")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CascadeError reports the cards that survived a study set deletion.
// The set record itself is gone; the remaining cards are inert orphans the
// caller may retry deleting individually.
type CascadeError struct {
	StudySetID string
	// Remaining maps each card that could not be deleted to the reason.
	Remaining map[string]error
}

// Error implements the error interface for CascadeError.
func (e *CascadeError) Error() string {
	return fmt.Sprintf("%v: study set %s, %d card(s) remain: %s",
		ErrPartialCascade, e.StudySetID, len(e.Remaining), strings.Join(e.RemainingIDs(), ", "))
}

// Unwrap lets errors.Is match ErrPartialCascade.
func (e *CascadeError) Unwrap() error {
	return ErrPartialCascade
}

// RemainingIDs returns the IDs of the cards left behind, sorted.
func (e *CascadeError) RemainingIDs() []string {
	ids := make([]string, 0, len(e.Remaining))
	for id := range e.Remaining {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
