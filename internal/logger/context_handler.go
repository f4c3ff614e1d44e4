package logger

import (
	"context"
	"log/slog"

	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
)

// contextFields lists the ctxutil values copied onto each record, in
// output order. Empty values are skipped.
var contextFields = []struct {
	key string
	get func(context.Context) string
}{
	{"sender_id", ctxutil.GetSenderID},
	{"request_id", func(ctx context.Context) string {
		id, _ := ctxutil.GetRequestID(ctx)
		return id
	}},
	{"route", ctxutil.GetRoute},
}

// ContextHandler tags records with the sender, request and route carried
// by the context, so a single webhook event can be followed across
// packages.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, f := range contextFields {
		if v := f.get(ctx); v != "" {
			r.AddAttrs(slog.String(f.key, v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
