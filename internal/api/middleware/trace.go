package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/memoria/internal/api/shared"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// TraceMiddleware assigns a trace ID to the request and stores a logger
// carrying it (and chi's request ID, when present) in the request context.
// It should run before any handler that logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
		}

		log := logger.FromContext(r.Context()).With(slog.String("trace_id", shared.GetTraceID(ctx)))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
