package storage

import (
	"context"
	"log/slog"
	"time"
)

const slowQueryThreshold = 100 * time.Millisecond

func logSlow(ctx context.Context, operation string, d time.Duration) {
	slog.WarnContext(ctx, "slow database operation",
		"operation", operation,
		"duration_ms", d.Milliseconds())
}

// trackSlow logs operations slower than slowQueryThreshold. Use with defer.
func trackSlow(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		if d := time.Since(start); d > slowQueryThreshold {
			logSlow(ctx, operation, d)
		}
	}
}
