package codec

import (
	"errors"
	"fmt"

	"github.com/phrazzld/memoria/internal/domain"
)

var (
	// ErrEmptySet is returned when exporting a list with no cards.
	ErrEmptySet = errors.New("the selected set has no flashcards to export")

	// ErrNoValidCards is returned when an import yields zero usable cards.
	ErrNoValidCards = errors.New("no valid flashcards found in file")

	// ErrParse is wrapped by ParseError.
	ErrParse = errors.New("failed to parse import file")

	// ErrEmptySeparator is returned when a CSV separator is empty.
	ErrEmptySeparator = fmt.Errorf("%w: separator cannot be empty", domain.ErrValidation)
)

// ParseError reports a malformed import file. Offset is the byte position the
// decoder stopped at, or -1 when unknown.
type ParseError struct {
	Format Format
	Reason string
	Offset int64
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%v: %s at offset %d: %s", ErrParse, e.Format, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrParse, e.Format, e.Reason)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}
