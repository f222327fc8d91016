package api

import "time"

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	UserID string `json:"user_id"`

	// Token is the bearer token for the generation endpoint.
	Token string `json:"token"`

	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
