package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memoria/internal/config"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/gemini"
	"github.com/phrazzld/memoria/internal/platform/postgres"
	"github.com/phrazzld/memoria/internal/service/auth"
	"github.com/phrazzld/memoria/internal/store"
)

// application holds the backend's shared dependencies so they can be closed
// together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	users     store.UserStore
	accounts  *auth.AccountService
	generator generation.Generator
}

// newApplication wires the stores, account service and Gemini generator on
// top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	users := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)

	generator, err := gemini.NewGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.LLM.ModelName))

	return &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		users:     users,
		accounts:  auth.NewAccountService(users, tokens, auth.NewBcryptVerifier(), logger),
		generator: generator,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
