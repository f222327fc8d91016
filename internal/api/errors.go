package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/service/auth"
	"github.com/phrazzld/memoria/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, store.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// messages are produced by this module and are passed through; anything
// else gets a fixed message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, store.ErrUnauthenticated):
		return "Authentication required"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, generation.ErrContentBlocked):
		return "The document was blocked by content safety filters"

	case errors.Is(err, generation.ErrGenerationFailed):
		return "No flashcards could be generated from this document"

	case errors.Is(err, generation.ErrInvalidResponse):
		return "The language model returned an unusable response"

	case errors.Is(err, generation.ErrTransientFailure):
		return "Flashcard generation is temporarily unavailable, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage strips the generic sentinel prefix from a domain
// validation error.
func validationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	}
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == "" {
		return "Validation error"
	}
	return msg
}

// SanitizeValidationError turns validator output into a short message that
// names the field and the failed rule.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}
	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
