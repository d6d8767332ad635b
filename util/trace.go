// Package util holds logging helpers and operand value generators shared by
// the other packages and their tests.
package util

import (
	"context"
	"log/slog"
)

// LevelTrace sits just above info so traces can be switched on without debug
// noise.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a message at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceEnabled tells if the default logger records LevelTrace.
func TraceEnabled() bool {
	return slog.Default().Enabled(context.Background(), LevelTrace)
}
