// Package log provides structured logging with swappable backends. The
// default provider emits JSON through zerolog, NewConsoleProvider renders
// human-readable lines for interactive runs, and SlogProvider targets log
// collectors through log/slog. TestLogger captures records in memory for
// assertions.
//
// Loggers take alternating key/value fields after the message. An error
// passed bare in key position is recorded under the standard error key
// together with its stack trace when it carries one:
//
//	log.GetLoggerWithName("ensemble").Error("Training failed", err,
//		log.OperationKey, log.OperationFit)
package log

import "context"

// Logger is the structured logging surface used across the library.
// Implementations are safe for concurrent use.
type Logger interface {
	// Debug records fine-grained progress for tracing a pipeline run.
	Debug(msg string, fields ...any)

	// Info records lifecycle events such as fit start and completion.
	Info(msg string, fields ...any)

	// Warn records recoverable conditions such as ill-defined metrics.
	Warn(msg string, fields ...any)

	// Error records failures. Pass the error value itself as a field and
	// the backend attaches it under the standard error key.
	Error(msg string, fields ...any)

	// With returns a logger whose records carry the given fields in
	// addition to any inherited ones.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted. Callers
	// use it to skip building expensive fields for suppressed records.
	Enabled(ctx context.Context, level Level) bool
}

// Level controls verbosity. Values match log/slog so the slog backend
// converts without translation.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the level name in slog's uppercase convention.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider constructs loggers for one backend.
type LoggerProvider interface {
	// GetLogger returns the root logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name,
	// conventionally the package or estimator emitting the records.
	GetLoggerWithName(name string) Logger

	// SetLevel adjusts the minimum emitted level.
	SetLevel(level Level)
}
