package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Attribute keys shared by every backend in this package. An error logged
// under ErrAttrKey gains a companion stacktrace attribute when the error
// records its construction site.
const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr returns err as a structured attribute under the standard error key.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// stackTraceHandler decorates an slog.Handler so that records carrying an
// error attribute also carry the error's stack trace. Surfacing the trace in
// the log line locates a failed pipeline stage without rerunning it under a
// debugger.
type stackTraceHandler struct {
	next slog.Handler
}

func newStackTraceHandler(next slog.Handler) *stackTraceHandler {
	return &stackTraceHandler{next: next}
}

func (h *stackTraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *stackTraceHandler) Handle(ctx context.Context, record slog.Record) error {
	var trace string
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			trace = extractStacktrace(err)
		}
		return false
	})
	if trace != "" {
		record.AddAttrs(slog.String(StacktraceAttrKey, trace))
	}
	return h.next.Handle(ctx, record)
}

func (h *stackTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackTraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *stackTraceHandler) WithGroup(name string) slog.Handler {
	return &stackTraceHandler{next: h.next.WithGroup(name)}
}

// extractStacktrace returns the stack recorded by cockroachdb/errors, or the
// empty string when err carries none.
func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}
