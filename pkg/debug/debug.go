// Package debug provides global switches for verbose engine traces
package debug

import "log/slog"

// Enabled controls whether debug logging is active
var Enabled bool

// Ticks controls whether per-tick pipeline traces are logged.
// These fire ten times a second, so keep them off unless tuning thresholds.
var Ticks bool

// Landmarks controls whether raw landmark ingest traces are logged
var Landmarks bool

// TickLog logs a per-tick trace only if tick tracing is enabled
func TickLog(logger *slog.Logger, msg string, args ...any) {
	if Ticks && logger != nil {
		logger.Debug(msg, args...)
	}
}

// LandmarkLog logs an ingest trace only if landmark tracing is enabled
func LandmarkLog(logger *slog.Logger, msg string, args ...any) {
	if Landmarks && logger != nil {
		logger.Debug(msg, args...)
	}
}
