package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	cfg.writer = output

	logger, err := New(&cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	return logger, output
}

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_LevelThreshold(t *testing.T) {
	tests := []struct {
		level      string
		wantLevels []string
	}{
		{level: "debug", wantLevels: []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{level: "info", wantLevels: []string{"INFO", "WARN", "ERROR"}},
		{level: "warn", wantLevels: []string{"WARN", "ERROR"}},
		{level: "error", wantLevels: []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, output := newBuffered(t, Config{Level: tt.level, Format: "json"})

			logger.Debug("bid placed", slog.String("job_id", "job-1"))
			logger.Info("bid placed", slog.String("job_id", "job-1"))
			logger.Warn("bid placed", slog.String("job_id", "job-1"))
			logger.Error("bid placed", slog.String("job_id", "job-1"))

			entries := decodeLines(t, output)
			require.Len(t, entries, len(tt.wantLevels))
			for i, entry := range entries {
				assert.Equal(t, tt.wantLevels[i], entry["level"])
				assert.Equal(t, "bid placed", entry["msg"])
				assert.Equal(t, "job-1", entry["job_id"])
				assert.Contains(t, entry, "time")
			}
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	logger, output := newBuffered(t, Config{Level: "info", Format: "console", TimeFormat: time.RFC3339})

	logger.Info("console test")

	// tint abbreviates levels
	assert.Contains(t, output.String(), "INF")
	assert.Contains(t, output.String(), "console test")
}

func TestNew_UnknownFormatFallsBackToJSON(t *testing.T) {
	logger, output := newBuffered(t, Config{Format: "xml"})

	logger.Info("fallback")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback", entries[0]["msg"])
}

func TestNew_Source(t *testing.T) {
	logger, output := newBuffered(t, Config{Level: "info", Format: "json", EnableSource: true})

	logger.Info("message with source")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	source, ok := entries[0]["source"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, source, "function")
	assert.Contains(t, source, "file")
	assert.Contains(t, source, "line")
}

func TestNew_Service(t *testing.T) {
	logger, output := newBuffered(t, Config{Level: "info", Format: "json", Service: "solosphere-api"})

	logger.Info("started")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "solosphere-api", entries[0]["service"])
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	logger, err := New(&Config{
		Level:   "info",
		Format:  "console",
		Output:  path,
		NoColor: true,
	})
	require.NoError(t, err)

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INF written to file")
}

func TestNew_FileOutputError(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "api.log")})
	assert.ErrorContains(t, err, "failed to open log file")
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: "info", expected: slog.LevelInfo},
		{level: "warn", expected: slog.LevelWarn},
		{level: "warning", expected: slog.LevelWarn},
		{level: "error", expected: slog.LevelError},
		{level: "DEBUG", expected: slog.LevelInfo}, // case-sensitive
		{level: "invalid", expected: slog.LevelInfo},
		{level: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_WithAttrs(t *testing.T) {
	logger, output := newBuffered(t, Config{Level: "info", Format: "json"})

	requestLogger := logger.WithAttrs(
		slog.String("request_id", "12345"),
		slog.String("actor", "bob@x.com"),
	)
	requestLogger.Info("job created", slog.Int("bid_count", 0), slog.Bool("owner_check", true))

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "12345", entries[0]["request_id"])
	assert.Equal(t, "bob@x.com", entries[0]["actor"])
	assert.Equal(t, float64(0), entries[0]["bid_count"])
	assert.Equal(t, true, entries[0]["owner_check"])
}
