// Package main runs the memoria command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/phrazzld/memoria/internal/cli"
	"github.com/phrazzld/memoria/internal/config"
	"github.com/phrazzld/memoria/internal/platform/generationapi"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/platform/postgres"
	"github.com/phrazzld/memoria/internal/store"
	"github.com/phrazzld/memoria/internal/store/memory"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoria: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

// setup loads configuration and wires the study set store, the generation
// backend client and the session file into a cli.App.
func setup(ctx context.Context) (*cli.App, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, nil, err
	}

	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Client.LogLevel, Output: os.Stderr})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	api, err := generationapi.NewClient(cfg.Client.APIBase, cfg.Client.RequestTimeout(),
		generationapi.WithLogger(l))
	if err != nil {
		return nil, nil, err
	}
	sessions, err := cli.NewSessionFile(cfg.Client.SessionFile)
	if err != nil {
		return nil, nil, err
	}

	opts := []cli.Option{
		cli.WithGenerator(api),
		cli.WithAccounts(api),
		cli.WithSessionFile(sessions),
		cli.WithNotificationTTL(cfg.Client.NotificationTTL()),
		cli.WithLogger(l),
	}

	var (
		st      store.StudySetStore
		cleanup = func() {}
	)
	switch cfg.Client.Storage {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL, l)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, l); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		st = postgres.NewPostgresStudySetStore(db, l)
		cleanup = func() {
			if err := db.Close(); err != nil {
				l.Error("failed to close database", slog.String("error", err.Error()))
			}
		}
	default:
		l.Debug("study sets are kept in memory for this run")
		st = memory.New(memory.WithLogger(l))
		opts = append(opts, cli.WithLocalSession())
	}

	return cli.NewApp(st, opts...), cleanup, nil
}
