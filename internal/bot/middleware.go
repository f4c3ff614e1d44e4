package bot

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/sentry"
)

// HandleFunc invokes a handler.
type HandleFunc func(ctx context.Context, h Handler, s *Session, text string) error

// Middleware wraps a HandleFunc.
type Middleware func(next HandleFunc) HandleFunc

// RouteRecorder counts dispatch routes.
type RouteRecorder interface {
	RecordRoute(route string)
}

// LoggingMiddleware logs handler failures and timing.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next HandleFunc) HandleFunc {
		return func(ctx context.Context, h Handler, s *Session, text string) error {
			start := time.Now()
			err := next(ctx, h, s, text)

			entry := log.WithModule(h.Name()).WithField("duration_ms", time.Since(start).Milliseconds())
			switch {
			case err == nil, errors.Is(err, errSkipped):
				entry.DebugContext(ctx, "Handler completed")
			default:
				entry.WithError(err).ErrorContext(ctx, "Handler failed")
			}
			return err
		}
	}
}

// MetricsMiddleware counts the route taken by each handler call.
func MetricsMiddleware(m RouteRecorder) Middleware {
	return func(next HandleFunc) HandleFunc {
		return func(ctx context.Context, h Handler, s *Session, text string) error {
			if m != nil {
				m.RecordRoute(h.Name())
			}
			return next(ctx, h, s, text)
		}
	}
}

// RecoveryMiddleware converts a handler panic into an error and reports it.
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(next HandleFunc) HandleFunc {
		return func(ctx context.Context, h Handler, s *Session, text string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = sentry.RecoverWithContext(ctx, r)
					log.WithModule(h.Name()).
						WithField("panic", r).
						WithField("stack", string(debug.Stack())).
						ErrorContext(ctx, "Handler panicked")
				}
			}()
			return next(ctx, h, s, text)
		}
	}
}
