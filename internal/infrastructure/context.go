package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

// runIDContextKey is the key under which the run ID travels in a context.
const runIDContextKey contextKey = "run_id"

// NewRunID creates a unique identifier for one invocation.
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID attaches a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// GetRunID retrieves the run ID from the context, or "" when absent.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// EnsureRunID returns a context that carries a run ID, generating one if
// needed.
func EnsureRunID(ctx context.Context) context.Context {
	if GetRunID(ctx) == "" {
		return WithRunID(ctx, NewRunID())
	}
	return ctx
}

// LoggerWithContext returns the global logger with the context's run ID
// attached as an attribute.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

// WithComponent returns a logger tagged with a component field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}
