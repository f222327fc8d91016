package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/phrazzld/memoria/internal/api"
	apiMiddleware "github.com/phrazzld/memoria/internal/api/middleware"
	"github.com/phrazzld/memoria/internal/api/shared"
	"github.com/phrazzld/memoria/internal/generation"
)

// setupRouter registers the backend routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization",
			"Content-Type",
			generation.HeaderLanguage,
			generation.HeaderDetailLevel,
			generation.HeaderKeywords,
			generation.HeaderStudyGoal,
		},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler)

	authHandler := api.NewAuthHandler(app.accounts)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.accounts)
	generateHandler := api.NewGenerateHandler(app.generator, app.config.Server.MaxUploadBytes)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/upload-generate", generateHandler.Generate)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return r
}
