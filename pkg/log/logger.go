package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(msg string, fields ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(msg string, fields ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(msg string, fields ...any) {
	l.log(context.Background(), slog.LevelError, msg, fields)
}

// log emits one record, following the wrapping recipe from the log/slog
// documentation so that source locations point at the caller rather than
// this adapter.
func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []any) {
	if !l.logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, log, and the exported method
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(normalizeFields(fields)...)
	_ = l.logger.Handler().Handle(ctx, record)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(normalizeFields(fields)...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// normalizeFields rewrites the bare-error convention into slog attributes.
// The traversal matches the zerolog backend: an error in key position
// becomes a standard error attribute, everything else must be a string key
// followed by a value.
func normalizeFields(fields []any) []any {
	out := make([]any, 0, len(fields))
	for i := 0; i < len(fields); {
		if err, ok := fields[i].(error); ok {
			out = append(out, ErrAttr(err))
			i++
			continue
		}
		if _, ok := fields[i].(string); !ok || i+1 >= len(fields) {
			break
		}
		out = append(out, fields[i], fields[i+1])
		i += 2
	}
	return out
}

// SlogProvider implements LoggerProvider on log/slog's JSON handler. Records
// carry "severity" and "message" keys plus the caller's source location, and
// errors are expanded with their stack traces. The CLI selects this backend
// with --log-format json for runs whose output feeds a log collector.
type SlogProvider struct {
	mu    sync.RWMutex
	root  *slog.Logger
	level *slog.LevelVar
}

// NewSlogProvider returns a provider writing one JSON record per line to w.
func NewSlogProvider(w io.Writer) *SlogProvider {
	level := new(slog.LevelVar)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	})
	return &SlogProvider{
		root:  slog.New(newStackTraceHandler(handler)),
		level: level,
	}
}

// GetLogger returns the root logger.
func (p *SlogProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &slogLogger{logger: p.root}
}

// GetLoggerWithName returns a logger tagged with a component name.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &slogLogger{logger: p.root.With(ComponentKey, name)}
}

// SetLevel adjusts the minimum level for all loggers from this provider.
func (p *SlogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level.Set(slog.Level(level))
}
