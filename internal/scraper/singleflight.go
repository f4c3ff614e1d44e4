package scraper

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Flight collapses concurrent crawls of the same key into one upstream
// request. Callers that arrive while a crawl is running share its result.
type Flight[T any] struct {
	group    singleflight.Group
	onShared func(key string)
}

// NewFlight creates a Flight. onShared, if non-nil, is called for every
// caller that received a shared result.
func NewFlight[T any](onShared func(key string)) *Flight[T] {
	return &Flight[T]{onShared: onShared}
}

// Do runs fn once per in-flight key. The crawl runs detached from the
// caller's cancellation so that one impatient caller does not fail the
// others waiting on the same key.
func (f *Flight[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	ch := f.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared && f.onShared != nil {
			f.onShared(key)
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Forget drops key so the next call starts a fresh crawl.
func (f *Flight[T]) Forget(key string) {
	f.group.Forget(key)
}
