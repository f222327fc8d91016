package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		level slog.Level
		ok    bool
	}{
		{input: "debug", level: slog.LevelDebug, ok: true},
		{input: "INFO", level: slog.LevelInfo, ok: true},
		{input: "Warn", level: slog.LevelWarn, ok: true},
		{input: "error", level: slog.LevelError, ok: true},
		{input: "verbose", level: slog.LevelInfo, ok: false},
		{input: "", level: slog.LevelInfo, ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			level, ok := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// Setup replaces the slog default, so these tests do not run in parallel.
func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("filters below configured level", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		l, err := logger.Setup(logger.LoggerConfig{Level: "warn", Output: buf})
		require.NoError(t, err)
		require.NotNil(t, l)

		l.Info("hidden")
		l.Warn("shown", slog.String("component", "test"))

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "shown", entries[0]["msg"])
		assert.Equal(t, "test", entries[0]["component"])
	})

	t.Run("invalid level falls back to info with a warning", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		l, err := logger.Setup(logger.LoggerConfig{Level: "loud", Output: buf})
		require.NoError(t, err)

		l.Debug("hidden")
		l.Info("shown")

		logger.AssertLogFieldValue(t, buf, "configured_level", "loud")
		logger.AssertLogContains(t, buf, "shown")
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("installs the default logger", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		_, err := logger.Setup(logger.LoggerConfig{Level: "info", Output: buf})
		require.NoError(t, err)

		slog.Info("via default")
		logger.AssertLogContains(t, buf, "via default")
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns stored logger", func(t *testing.T) {
		t.Parallel()
		ctx, buf := logger.NewLogCaptureContext(t)

		logger.FromContext(ctx).Info("stored")
		logger.AssertLogContains(t, buf, "stored")
	})

	t.Run("falls back when none stored", func(t *testing.T) {
		t.Parallel()
		fallback, buf := logger.GetTestLogger(t)

		logger.FromContextOrDefault(context.Background(), fallback).Info("fallback")
		logger.AssertLogContains(t, buf, "fallback")
	})

	t.Run("attaches request id", func(t *testing.T) {
		t.Parallel()
		ctx, buf := logger.NewLogCaptureContext(t)
		ctx = logger.WithRequestID(ctx, "req-42")

		assert.Equal(t, "req-42", logger.RequestIDFromContext(ctx))
		logger.FromContext(ctx).Info("with id")
		logger.AssertLogFieldValue(t, buf, "request_id", "req-42")
	})

	t.Run("nil context uses fallback", func(t *testing.T) {
		t.Parallel()
		fallback, buf := logger.GetTestLogger(t)

		//nolint:staticcheck // exercising nil tolerance
		logger.FromContextOrDefault(nil, fallback).Info("nil ctx")
		logger.AssertLogContains(t, buf, "nil ctx")
	})
}
