package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	l := newWithClock(3, 1, clock.Now)

	for i := range 3 {
		assert.True(t, l.Allow(), "attempt %d", i+1)
	}
	assert.False(t, l.Allow())
	assert.Equal(t, time.Second, l.RetryAfter())
}

func TestLimiter_Refill(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	l := newWithClock(2, 2, clock.Now)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	clock.Advance(250 * time.Millisecond)
	assert.False(t, l.Allow(), "half a token is not enough")
	assert.Equal(t, 250*time.Millisecond, l.RetryAfter())

	clock.Advance(250 * time.Millisecond)
	assert.True(t, l.Allow())

	clock.Advance(time.Hour)
	assert.InDelta(t, 2, l.Available(), 0.0001, "refill is capped at the burst size")
	assert.True(t, l.IsFull())
}

func TestLimiter_NoRefill(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	l := newWithClock(1, 0, clock.Now)

	assert.True(t, l.Allow())
	clock.Advance(time.Hour)
	assert.False(t, l.Allow())
	assert.Zero(t, l.RetryAfter())
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	l := New(50, 0)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 200 {
		wg.Go(func() {
			if l.Allow() {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowed.Load())
}
