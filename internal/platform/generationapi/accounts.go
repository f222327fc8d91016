package generationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// Account endpoint paths, relative to the API base.
const (
	RegisterPath = "/api/auth/register"
	LoginPath    = "/api/auth/login"
)

// Credentials are issued by the account endpoints.
type Credentials struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session returns the session the credentials grant.
func (c Credentials) Session() domain.Session {
	return domain.Session{UserID: c.UserID, Token: c.Token}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns credentials for it.
func (c *Client) Register(ctx context.Context, email, password string) (Credentials, error) {
	return c.postCredentials(ctx, RegisterPath, email, password)
}

// Login exchanges an email and password for credentials. Wrong credentials
// come back as a *generation.FailedError with status 401.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	return c.postCredentials(ctx, LoginPath, email, password)
}

func (c *Client) postCredentials(ctx context.Context, path, email, password string) (Credentials, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("account request failed", slog.String("path", path), slog.String("error", err.Error()))
		return Credentials{}, fmt.Errorf("%w: %w", generation.ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: reading response: %w", generation.ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Credentials{}, &generation.FailedError{
			StatusCode: resp.StatusCode,
			Message:    accountErrorMessage(resp.StatusCode, raw),
		}
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
	}
	if creds.UserID == "" || creds.Token == "" {
		return Credentials{}, fmt.Errorf("%w: credentials missing user or token", generation.ErrInvalidResponse)
	}

	log.Debug("account request succeeded", slog.String("path", path), slog.String("user_id", creds.UserID))
	return creds, nil
}

// accountErrorMessage reads {"error": ...} bodies, falling back to the
// upload-generate {"detail": ...} shape and the status text.
func accountErrorMessage(status int, raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return errorDetail(status, raw)
}
