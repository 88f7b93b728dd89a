// Package log configures the process-wide slog logger.
//
// Logs go to stderr so that stdout stays free for the session report. The
// format is text on a terminal and JSON when GO_ENV=production.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level  = new(slog.LevelVar)
	logger *slog.Logger
	once   sync.Once
)

// Init installs the logger at the named level ("debug", "info", "warn",
// "error"). Later calls only change the level.
func Init(name string) {
	SetLevel(name)
	once.Do(func() {
		logger = New(os.Stderr, os.Getenv("GO_ENV") == "production")
		slog.SetDefault(logger)
	})
}

// New builds a logger on w that shares the global level.
func New(w io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetLevel changes the level of every logger built by this package.
func SetLevel(name string) {
	level.Set(ParseLevel(name))
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L returns the global logger, initializing it at info if needed.
func L() *slog.Logger {
	once.Do(func() {
		logger = New(os.Stderr, os.Getenv("GO_ENV") == "production")
		slog.SetDefault(logger)
	})
	return logger
}

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}
