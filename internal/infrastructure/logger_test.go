package infrastructure

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copulakit/internal/config"
)

func TestInitializeLogger_Console(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "console",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())
}

func TestInitializeLogger_OnceSemantics(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second, "second initialization must be a no-op")
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	path := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("fit finished", "family", "clayton")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fit finished")
	assert.Contains(t, string(data), "clayton")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("unknown"))
}

func TestRunIDPropagation(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	id := NewRunID()
	ctx = WithRunID(ctx, id)
	assert.Equal(t, id, GetRunID(ctx))

	// EnsureRunID keeps an existing ID and mints one when missing.
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)))
	assert.NotEmpty(t, GetRunID(EnsureRunID(context.Background())))
}

func TestRunIDHandler_StampsRecords(t *testing.T) {
	var buf bytes.Buffer
	handler := &runIDHandler{Handler: slog.NewJSONHandler(&buf, nil)}
	logger := slog.New(handler)

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "calibrating")

	assert.Contains(t, buf.String(), "run-123")
}
