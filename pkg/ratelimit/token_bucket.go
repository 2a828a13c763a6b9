package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket allows bursts up to its capacity while holding the average
// rate at refillRate tokens per second.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate float64
	lastRefill time.Time
	now        Clock
	mu         sync.Mutex
}

// NewTokenBucket returns a full bucket.
//
//	// 10 requests/sec average, burst up to 50
//	bucket := NewTokenBucket(50, 10, time.Now)
func NewTokenBucket(capacity int64, refillRate float64, now Clock) *TokenBucket {
	if now == nil {
		now = time.Now
	}
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Take consumes n tokens if they are available.
func (tb *TokenBucket) Take(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// Remaining returns the tokens available now.
func (tb *TokenBucket) Remaining() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// Capacity returns the bucket size.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// TimeUntilAvailable returns how long until n tokens are available.
func (tb *TokenBucket) TimeUntilAvailable(n int64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens >= n {
		return 0
	}
	seconds := float64(n-tb.tokens) / tb.refillRate
	return time.Duration(seconds * float64(time.Second))
}

// refillLocked adds the tokens earned since the last refill. Partial tokens
// carry over because lastRefill only advances by whole tokens.
func (tb *TokenBucket) refillLocked() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)

	earned := int64(elapsed.Seconds() * tb.refillRate)
	if earned <= 0 {
		return
	}

	tb.tokens += earned
	if tb.tokens >= tb.capacity {
		tb.tokens = tb.capacity
		tb.lastRefill = now
		return
	}
	tb.lastRefill = tb.lastRefill.Add(time.Duration(float64(earned) / tb.refillRate * float64(time.Second)))
}
