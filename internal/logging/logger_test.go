package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufLogger(level LogLevel, format string) (*FencerLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: format,
		Output: &buf,
	})
	return logger, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, level, "input %q", tt.input)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerRespectsLevel(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelWarn, "text")

	logger.Debug(ctx, "scanning docs/guide.md")
	logger.Info(ctx, "scanned docs/guide.md")
	require.Zero(t, buf.Len(), "messages below the configured level must be dropped")

	logger.Warn(ctx, nil, "unknown key ignored")
	assert.Contains(t, buf.String(), "unknown key ignored")
	assert.Contains(t, buf.String(), "WARN")
}

func TestFatalBypassesLevelGate(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelFatal, "text")

	logger.Error(ctx, errors.New("boom"), "suppressed")
	require.Zero(t, buf.Len())

	logger.Fatal(ctx, errors.New("boom"), "cannot continue")
	assert.Contains(t, buf.String(), "cannot continue")
}

func TestJSONOutput(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelDebug, "json")

	logger.Error(ctx, errors.New("fence never closed"), "build failed", "documents", 3)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "build failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "fence never closed", entry["error"])
	assert.Equal(t, float64(3), entry["documents"])
}

func TestWithFieldsPersist(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelInfo, "json")

	child := logger.With("document", "docs/guide.md")
	child.Info(ctx, "processed")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "docs/guide.md", entry["document"])

	// Parent is untouched by the child's fields.
	buf.Reset()
	logger.Info(ctx, "plain")
	entry = decodeEntry(t, buf)
	assert.NotContains(t, entry, "document")
}

func TestWithComponent(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelInfo, "json")

	logger.WithComponent("scanner").Info(ctx, "pass complete")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "scanner", entry["component"])
}

func TestDanglingFieldKeyIgnored(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufLogger(LevelInfo, "json")

	logger.Info(ctx, "partial fields", "documents", 2, "orphan")

	entry := decodeEntry(t, buf)
	assert.Equal(t, float64(2), entry["documents"])
	assert.NotContains(t, entry, "orphan")
}

func TestNilConfigUsesDefaults(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.level)
}

func TestPerfLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("end logs duration", func(t *testing.T) {
		logger, buf := newBufLogger(LevelDebug, "json")

		perf := logger.StartOperation("build")
		perf.End(ctx)

		entry := decodeEntry(t, buf)
		assert.Equal(t, "operation completed", entry["msg"])
		assert.Equal(t, "build", entry["operation"])
		assert.Contains(t, entry, "duration_ms")
	})

	t.Run("end with error logs failure", func(t *testing.T) {
		logger, buf := newBufLogger(LevelDebug, "json")

		perf := logger.StartOperation("rebuild")
		perf.EndWithError(ctx, errors.New("scan failed"))

		entry := decodeEntry(t, buf)
		assert.Equal(t, "operation failed", entry["msg"])
		assert.Equal(t, "rebuild", entry["operation"])
		assert.Equal(t, "scan failed", entry["error"])
	})
}
