// Package logger wraps log/slog with a process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init installs a text logger at the given level writing to stderr.
func Init(level slog.Level) {
	InitWriter(os.Stderr, level)
}

// InitWriter installs a text logger at the given level writing to w.
func InitWriter(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	mu.Lock()
	logger = slog.New(handler)
	mu.Unlock()
	slog.SetDefault(logger)
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// L returns the global logger instance
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(slog.LevelInfo)
		return L()
	}
	return l
}

// Info is a shorthand for L().Info
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Error is a shorthand for L().Error
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// Debug is a shorthand for L().Debug
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Warn is a shorthand for L().Warn
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}
