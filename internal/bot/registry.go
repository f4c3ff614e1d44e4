package bot

import (
	"context"

	"github.com/nvnfont/nvnfont-bot-go/internal/ctxutil"
)

// Registry holds keyword handlers in priority order.
type Registry struct {
	handlers   []Handler
	middleware []Middleware
}

// NewRegistry creates an empty registry. Middleware wrap every handler
// call, outermost first.
func NewRegistry(mw ...Middleware) *Registry {
	return &Registry{middleware: mw}
}

// Register appends h. Earlier handlers win.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Dispatch runs the first handler whose CanHandle matches text. It reports
// whether any handler matched.
func (r *Registry) Dispatch(ctx context.Context, s *Session, text string) bool {
	for _, h := range r.handlers {
		if !h.CanHandle(text) {
			continue
		}
		call := HandleFunc(func(ctx context.Context, h Handler, s *Session, text string) error {
			return h.Handle(ctx, s, text)
		})
		for i := len(r.middleware) - 1; i >= 0; i-- {
			call = r.middleware[i](call)
		}
		_ = call(ctxutil.WithRoute(ctx, h.Name()), h, s, text)
		return true
	}
	return false
}

// Handlers returns the registered handler names in order.
func (r *Registry) Handlers() []string {
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name()
	}
	return names
}
