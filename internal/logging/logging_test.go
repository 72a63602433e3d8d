package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/detectpanel/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestCorrelationID_Roundtrip(t *testing.T) {
	ctx := logging.WithCorrelationID(context.Background(), "abc")
	id, ok := logging.CorrelationID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestCorrelationID_MissingOrEmpty(t *testing.T) {
	_, ok := logging.CorrelationID(context.Background())
	assert.False(t, ok)

	_, ok = logging.CorrelationID(logging.WithCorrelationID(context.Background(), ""))
	assert.False(t, ok)
}

func TestNewCorrelationID_Unique(t *testing.T) {
	ids := make(map[string]struct{}, 50)
	for range 50 {
		ids[logging.NewCorrelationID()] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestInit_JSONWithCorrelation(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := logging.Init("debug", "json", &buf)

	ctx := logging.WithCorrelationID(context.Background(), "req-1")
	logger.DebugContext(ctx, "hello", "key", "value")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["correlation_id"])
	assert.Equal(t, "value", rec["key"])
}

func TestInit_TextRespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := logging.Init("warn", "text", &buf)

	logger.Info("dropped")
	logger.With("component", "test").Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "component=test")
	assert.NotContains(t, out, "correlation_id")
}
