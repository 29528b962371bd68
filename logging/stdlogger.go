// Package logging implements the typedef.Logger contract: a stdlib slog
// backend for development and an sqlite-backed backend grounded on
// original_source/src/Logger.py's DbLogger, selected at construction from a
// configuration enum per spec §9's "provider" design note.
package logging

import (
	"context"
	"log/slog"
	"os"

	"transitcore/typedef"
)

// StdLogger adapts typedef.Logger onto log/slog. This is the ambient-stack
// default: the teacher itself reaches no further than fmt/log for output,
// so slog (stdlib) is the natural structured-logging upgrade rather than a
// dropped third-party dependency (see SPEC_FULL §10.2).
type StdLogger struct {
	logger *slog.Logger
}

// NewStdLogger builds a StdLogger over handler (a JSON handler writing to
// os.Stderr if nil).
func NewStdLogger(handler slog.Handler) *StdLogger {
	if handler == nil {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	return &StdLogger{logger: slog.New(handler)}
}

// Log implements typedef.Logger.
func (l *StdLogger) Log(level typedef.LogLevel, text string) {
	l.logger.Log(context.Background(), slogLevel(level), text)
}

func slogLevel(level typedef.LogLevel) slog.Level {
	switch level {
	case typedef.LogDebug:
		return slog.LevelDebug
	case typedef.LogInfo:
		return slog.LevelInfo
	case typedef.LogWarning:
		return slog.LevelWarn
	case typedef.LogError, typedef.LogFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
