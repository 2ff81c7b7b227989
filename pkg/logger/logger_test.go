package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.Info("test message", "key", "value")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "error")

	log.Error("error occurred", "error", "something went wrong")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "something went wrong", entry["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logFunc   func(*slog.Logger)
		shouldLog bool
	}{
		{"debug logs at debug level", "debug", func(l *slog.Logger) { l.Debug("msg") }, true},
		{"info logs at debug level", "debug", func(l *slog.Logger) { l.Info("msg") }, true},
		{"debug skipped at info level", "info", func(l *slog.Logger) { l.Debug("msg") }, false},
		{"warn logs at info level", "info", func(l *slog.Logger) { l.Warn("msg") }, true},
		{"info skipped at warn level", "warn", func(l *slog.Logger) { l.Info("msg") }, false},
		{"error logs at error level", "error", func(l *slog.Logger) { l.Error("msg") }, true},
		{"warn skipped at error level", "error", func(l *slog.Logger) { l.Warn("msg") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(&buf, tt.level))

			if tt.shouldLog {
				assert.NotEmpty(t, buf.String(), "expected log output")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.With("service", "msid").With("version", "1.0").Info("request handled")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "msid", entry["service"])
	assert.Equal(t, "1.0", entry["version"])
}

func TestLogger_ContextExtractors(t *testing.T) {
	t.Run("adds extracted attribute", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "info", requestIDExtractor)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
		log.InfoContext(ctx, "handled")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "req-123", entry["request_id"])
	})

	t.Run("skips missing attribute", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "info", requestIDExtractor)

		log.InfoContext(context.Background(), "handled")

		entry := decodeEntry(t, &buf)
		_, ok := entry["request_id"]
		assert.False(t, ok)
	})

	t.Run("survives With and WithGroup", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "info", requestIDExtractor).With("component", "server").WithGroup("http")

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-456")
		log.InfoContext(ctx, "handled", "status", 200)

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "server", entry["component"])
		group, ok := entry["http"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "req-456", group["request_id"])
	})

	t.Run("nil extractors are ignored", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "info", nil)

		log.InfoContext(context.Background(), "handled")
		assert.NotEmpty(t, buf.String())
	})
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.Info("json test", "nested", map[string]string{"foo": "bar"})

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, "{"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(output), "}"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" ERROR ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_NilOutput(t *testing.T) {
	assert.NotNil(t, New(nil, "info"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotNil(t, log)
	log.Error("discarded")
}
