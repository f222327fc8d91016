package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/memoria/internal/domain"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

// Context keys for request-scoped values.
const (
	// SessionContextKey holds the authenticated domain.Session.
	SessionContextKey ContextKey = "session"

	// TraceIDKey holds the trace ID used to correlate logs and error responses.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID returns a copy of ctx carrying a fresh trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithSession returns a copy of ctx carrying the authenticated session.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// SessionFromContext returns the session placed by the auth middleware.
// The boolean is false when the request was not authenticated.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(SessionContextKey).(domain.Session)
	if !ok || !sess.Authenticated() {
		return domain.Session{}, false
	}
	return sess, true
}

// generateTraceID returns 32 random hex characters. If the system random
// source fails it falls back to a random UUID without dashes.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "uuid")
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}
