// Package ratelimit implements the per-tool token-bucket admission control
// described in spec.md §4.E. Each configured tool gets its own
// golang.org/x/time/rate.Limiter, whose AllowN(now, 1) form gives exactly
// the non-blocking, injectable-clock tryAcquire the spec calls for — a
// denied call never decrements the bucket. A tool with no configured
// bucket is unlimited.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time.Now for deterministic limiter tests.
type Clock func() time.Time

// BucketConfig describes one tool's token bucket.
type BucketConfig struct {
	Capacity        int     // burst size
	RefillPerSecond float64 // steady-state refill rate
}

// Limiter is the per-tool rate limiter. Safe for concurrent use; each
// tool's bucket is an independent *rate.Limiter guarded by its own lock
// internally, so no cross-tool contention.
type Limiter struct {
	mu       sync.RWMutex
	buckets  map[string]*rate.Limiter // lowercase tool name -> bucket
	clock    Clock
}

// New builds a Limiter from a table of per-tool bucket configs (lowercase
// tool names). Tools absent from the table are unlimited.
func New(configs map[string]BucketConfig) *Limiter {
	buckets := make(map[string]*rate.Limiter, len(configs))
	for name, cfg := range configs {
		buckets[name] = rate.NewLimiter(rate.Limit(cfg.RefillPerSecond), cfg.Capacity)
	}
	return &Limiter{buckets: buckets, clock: time.Now}
}

// WithClock overrides the clock source used by TryAcquire, for
// deterministic tests.
func (l *Limiter) WithClock(clock Clock) *Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = clock
	return l
}

// TryAcquire atomically checks and, if admitted, decrements toolName's
// bucket. A tool with no configured bucket is always admitted. A denied
// request never consumes a token.
func (l *Limiter) TryAcquire(toolNameLower string) bool {
	l.mu.RLock()
	bucket, ok := l.buckets[toolNameLower]
	clock := l.clock
	l.mu.RUnlock()

	if !ok {
		return true
	}
	return bucket.AllowN(clock(), 1)
}

// Null is the always-admit Limiter variant used when rate limiting is
// disabled (spec.md §4.J).
type Null struct{}

// TryAcquire always admits.
func (Null) TryAcquire(string) bool { return true }

// Acquirer is the capability the dispatcher depends on, satisfied by both
// *Limiter and Null.
type Acquirer interface {
	TryAcquire(toolNameLower string) bool
}
