// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// New builds a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs a logger as slog's default and returns it.
// An unparsable level falls back to info and is reported through the new logger.
func Setup(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl, err := ParseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	logger := New(w, lvl)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("falling back to info logging", "error", err)
	}
	return logger
}
