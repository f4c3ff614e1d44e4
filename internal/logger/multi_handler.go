package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// MultiHandler writes every record to both the local JSON sink and the
// optional remote sink. Each sink receives its own clone of the record.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler drops nil sinks so callers can pass an optional remote
// handler unconditionally.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	sinks := slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool { return h == nil })
	return &MultiHandler{handlers: sinks}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.handlers, func(sink slog.Handler) bool {
		return sink.Enabled(ctx, level)
	})
}

// Handle keeps writing to the remaining sinks when one fails and reports
// all failures together.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sink := range h.handlers {
		if sink.Enabled(ctx, r.Level) {
			errs = append(errs, sink.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(sink slog.Handler) slog.Handler { return sink.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(sink slog.Handler) slog.Handler { return sink.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	sinks := make([]slog.Handler, len(h.handlers))
	for i, sink := range h.handlers {
		sinks[i] = fn(sink)
	}
	return &MultiHandler{handlers: sinks}
}
