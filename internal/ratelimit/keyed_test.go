package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type dropCounter struct {
	mu    sync.Mutex
	drops map[string]int
}

func (d *dropCounter) RecordRateLimited(limiter string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drops == nil {
		d.drops = make(map[string]int)
	}
	d.drops[limiter]++
}

func TestKeyedLimiter_PerKey(t *testing.T) {
	t.Parallel()
	drops := &dropCounter{}
	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 0.5, CleanupPeriod: time.Hour, Metrics: drops})
	defer kl.Stop()
	clock := newFakeClock()
	kl.now = clock.Now

	assert.True(t, kl.Allow("10.0.0.1"))
	assert.False(t, kl.Allow("10.0.0.1"))
	assert.True(t, kl.Allow("10.0.0.2"), "keys do not share a bucket")
	assert.Equal(t, 2*time.Second, kl.RetryAfter("10.0.0.1"))
	assert.Zero(t, kl.RetryAfter("unknown"))
	assert.Equal(t, 1, drops.drops["api"])

	clock.Advance(2 * time.Second)
	assert.True(t, kl.Allow("10.0.0.1"))
}

func TestKeyedLimiter_EmptyKeyUnlimited(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 0})
	defer kl.Stop()

	for range 5 {
		assert.True(t, kl.Allow(""))
	}
	assert.Zero(t, kl.ActiveCount())
}

func TestKeyedLimiter_PruneIdle(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 2, RefillRate: 1, CleanupPeriod: time.Hour})
	defer kl.Stop()
	clock := newFakeClock()
	kl.now = clock.Now

	kl.Allow("busy")
	kl.Allow("busy")
	kl.Allow("idle")
	assert.Equal(t, 2, kl.ActiveCount())

	clock.Advance(time.Second)
	assert.Equal(t, 1, kl.prune(), "only the refilled key is dropped")

	clock.Advance(time.Second)
	assert.Equal(t, 0, kl.prune())
}

func TestKeyedLimiter_StopIdempotent(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 1, CleanupPeriod: time.Millisecond})
	kl.Stop()
	kl.Stop()
}
