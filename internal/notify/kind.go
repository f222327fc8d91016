package notify

import (
	"errors"
	"net/http"

	"github.com/phrazzld/memoria/internal/codec"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/service/auth"
	"github.com/phrazzld/memoria/internal/store"
)

// Kind is the category of a user-visible failure.
type Kind string

// Notification kinds.
const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindRemote     Kind = "remote"
	KindParse      Kind = "parse"
)

// Classify maps an error to its Kind. Anything not recognised as a
// validation, auth or parse failure is a remote failure.
func Classify(err error) Kind {
	var failed *generation.FailedError
	switch {
	case errors.Is(err, codec.ErrParse),
		errors.Is(err, codec.ErrNoValidCards),
		errors.Is(err, codec.ErrEmptySet):
		return KindParse
	case errors.Is(err, domain.ErrValidation):
		return KindValidation
	case errors.Is(err, store.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return KindAuth
	case errors.As(err, &failed) && failed.StatusCode == http.StatusUnauthorized:
		return KindAuth
	default:
		return KindRemote
	}
}
