// Package log provides the zerolog-backed default implementation of the
// Logger and LoggerProvider interfaces.
//
// The zerolog backend is the production default: library code obtains loggers
// through the package-level GetLogger and GetLoggerWithName functions, which
// delegate to a swappable LoggerProvider. Tests swap in a TestLoggerProvider
// via SetLoggerProvider to capture output.

package log

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	harlearnErrors "github.com/sigmotion/harlearn/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

// toZerologLevel converts a Level to the corresponding zerolog level.
func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug implements Logger.Debug.
func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.logger.Error(), msg, fields)
}

// With implements Logger.With.
func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.logger.GetLevel()
}

// emit attaches structured fields to a zerolog event and sends it.
//
// Fields follow the slog key-value convention, with one extension: a bare
// error value in key position is logged under the "error" key with its
// cockroachdb stack trace attached, matching the Logger.Error contract.
func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	i := 0
	for i < len(fields) {
		if err, ok := fields[i].(error); ok {
			event = event.AnErr(ErrAttrKey, err)
			if st := extractStacktrace(err); st != "" {
				event = event.Str(StacktraceAttrKey, st)
			}
			i++
			continue
		}

		key, ok := fields[i].(string)
		if !ok || i+1 >= len(fields) {
			break
		}
		value := fields[i+1]
		switch v := value.(type) {
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		case error:
			event = event.AnErr(key, v)
			if st := extractStacktrace(v); st != "" {
				event = event.Str(StacktraceAttrKey, st)
			}
		default:
			event = event.Interface(key, v)
		}
		i += 2
	}
	event.Msg(msg)
}

// ZerologProvider is the zerolog-backed LoggerProvider.
type ZerologProvider struct {
	mu    sync.RWMutex
	root  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON records to w.
func NewZerologProvider(w io.Writer) *ZerologProvider {
	root := zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	return &ZerologProvider{root: root, level: LevelInfo}
}

// NewConsoleProvider creates a provider writing human-readable records to w.
// The harlearn CLI uses it for terminal output.
func NewConsoleProvider(w io.Writer) *ZerologProvider {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	root := zerolog.New(console).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	return &ZerologProvider{root: root, level: LevelInfo}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.root}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.root.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.root = p.root.Level(toZerologLevel(level))
}

// ===========================================================================
//
//	Package-level provider management
//
// ===========================================================================

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider
)

func init() {
	defaultProvider = NewZerologProvider(os.Stderr)

	// Route harlearn warnings (UndefinedMetricWarning etc.) through the
	// structured logger. Set here rather than in pkg/errors to avoid an
	// import cycle.
	harlearnErrors.SetZerologWarnFunc(func(warning error) {
		GetLoggerWithName("warnings").Warn(warning.Error(), "warning", warning)
	})
}

// SetLoggerProvider replaces the process-wide logger provider. Tests use it
// to install a TestLoggerProvider.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a component-scoped logger from the current provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}
