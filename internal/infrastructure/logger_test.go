package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/internal/config"
)

// fileLoggingConfig points the logger at a file inside the test's temp
// dir so assertions can read the output back.
func fileLoggingConfig(t *testing.T, level, format string) (config.LoggingConfig, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	return config.LoggingConfig{
		Level:    level,
		Format:   format,
		Output:   "file",
		FilePath: path,
	}, path
}

func readLogEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLoggerWritesJSON(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg, path := fileLoggingConfig(t, "info", "json")

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("snapshot loaded", "row_count", 12)
	require.NoError(t, CloseLogFile())

	entries := readLogEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot loaded", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.EqualValues(t, 12, entries[0]["row_count"])
}

func TestInitializeLoggerOnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg, _ := fileLoggingConfig(t, "info", "json")

	first, err := InitializeLogger(cfg)
	require.NoError(t, err)

	// A second call with a different config must not rebuild.
	second, err := InitializeLogger(config.LoggingConfig{Level: "error", Format: "text"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestTextFormat(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg, path := fileLoggingConfig(t, "info", "text")

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)

	logger.Info("plain message")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `msg="plain message"`)
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg, path := fileLoggingConfig(t, "debug", "json")

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-abc-123")
	logger.InfoContext(ctx, "with trace")
	logger.Info("without trace")
	require.NoError(t, CloseLogFile())

	entries := readLogEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-abc-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warning", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			cfg, path := fileLoggingConfig(t, tt.level, "json")

			logger, err := InitializeLogger(cfg)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Warn("warn line")
			require.NoError(t, CloseLogFile())

			content, err := os.ReadFile(path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDebug, strings.Contains(string(content), "debug line"))
			assert.Equal(t, tt.wantWarn, strings.Contains(string(content), "warn line"))
		})
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)

	// An existing id survives; a bare context gets a fresh one.
	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEmpty(t, GetTraceID(EnsureTraceID(context.Background())))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestLoggerWithContext(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg, path := fileLoggingConfig(t, "info", "json")
	_, err := InitializeLogger(cfg)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "run-42")
	LoggerWithContext(ctx).Info("report started")
	require.NoError(t, CloseLogFile())

	entries := readLogEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0]["trace_id"])
}
