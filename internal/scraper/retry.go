package scraper

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// permanentError marks a failure that retrying cannot fix (4xx responses).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryWithBackoff stops immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff calls fn until it succeeds, returns a Permanent error,
// ctx is done, or maxRetries retries have been spent.
//
// The delay before retry n (1-based) is initialDelay * 2^(n-1), capped at
// maxDelay, with ±25% jitter:
//
//	attempt 0: immediate
//	attempt 1: ~1s
//	attempt 2: ~2s
//	attempt 3: ~4s
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay, maxDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}
		if err := Sleep(ctx, backoffDelay(attempt, initialDelay, maxDelay)); err != nil {
			return err
		}
	}

	return lastErr
}

func backoffDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	delay := initialDelay << attempt
	if maxDelay > 0 && (delay > maxDelay || delay <= 0) {
		delay = maxDelay
	}
	quarter := int64(delay) / 4
	if quarter <= 0 {
		return delay
	}
	// delay ± 25%
	return delay - time.Duration(quarter) + time.Duration(rand.Int64N(2*quarter+1))
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
