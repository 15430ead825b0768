package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelWarn)
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}, slog.LevelInfo) })

	Info("hidden")
	Warn("shown", "ingredient", "flour")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "ingredient=flour")
}

func TestShorthandsUseInstalledLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelDebug)
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}, slog.LevelInfo) })

	Debug("pool ready", "max_conns", 4)
	Info("server running")
	Warn("graceful shutdown failed")
	Error("server failed to start", "addr", "127.0.0.1:9090")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"pool ready\" max_conns=4")
	assert.Contains(t, out, "level=INFO msg=\"server running\"")
	assert.Contains(t, out, "level=WARN msg=\"graceful shutdown failed\"")
	assert.Contains(t, out, "level=ERROR msg=\"server failed to start\" addr=127.0.0.1:9090")
	assert.Same(t, L(), slog.Default())
}
