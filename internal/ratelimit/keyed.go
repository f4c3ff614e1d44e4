package ratelimit

import (
	"sync"
	"time"
)

// DropRecorder counts rejected requests per limiter.
type DropRecorder interface {
	RecordRateLimited(limiter string)
}

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name labels this limiter in metrics (e.g. "api").
	Name string

	Burst      float64 // Maximum tokens per key
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle keys are dropped.
	CleanupPeriod time.Duration

	Metrics DropRecorder
}

// KeyedLimiter keeps one token bucket per key (client IP, sender id) and
// drops buckets that have refilled completely.
type KeyedLimiter struct {
	config KeyedConfig
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*Limiter

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		config:  cfg,
		now:     time.Now,
		entries: make(map[string]*Limiter),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow consumes a token for key. An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	if kl.entry(key).Allow() {
		return true
	}
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimited(kl.config.Name)
	}
	return false
}

// RetryAfter reports how long key must wait for its next token.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	kl.mu.Lock()
	l, ok := kl.entries[key]
	kl.mu.Unlock()
	if !ok {
		return 0
	}
	return l.RetryAfter()
}

func (kl *KeyedLimiter) entry(key string) *Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	l, ok := kl.entries[key]
	if !ok {
		l = newWithClock(kl.config.Burst, kl.config.RefillRate, kl.now)
		kl.entries[key] = l
	}
	return l
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

// prune drops idle keys and returns how many remain.
func (kl *KeyedLimiter) prune() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, l := range kl.entries {
		if l.IsFull() {
			delete(kl.entries, key)
		}
	}
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	defer close(kl.done)

	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.prune()
		}
	}
}

// Stop ends the cleanup loop and waits for it. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
	<-kl.done
}
