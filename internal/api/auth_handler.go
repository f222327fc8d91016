package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/memoria/internal/api/shared"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/service/auth"
)

// Accounts is the account behaviour the auth endpoints need.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (auth.Token, error)
}

// AuthHandler serves the registration and login endpoints.
type AuthHandler struct {
	accounts Accounts
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register handles POST /api/auth/register. A new account is logged in
// straight away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if _, err := h.accounts.Register(r.Context(), req.Email, req.Password); err != nil {
		h.respondWithAccountError(w, r, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithAccountError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toAuthResponse(token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithAccountError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toAuthResponse(token))
}

func (h *AuthHandler) respondWithAccountError(w http.ResponseWriter, r *http.Request, err error) {
	var opts []shared.ResponseOption
	if errors.Is(err, auth.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err, opts...)
}

func toAuthResponse(t auth.Token) AuthResponse {
	return AuthResponse{
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	}
}
