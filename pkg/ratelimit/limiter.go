package ratelimit

import (
	"sync"
	"time"
)

// Limiter applies every configured limit for one client. A request is
// rejected by the first limit it exceeds, and a rejected request consumes
// nothing from any limit.
type Limiter struct {
	config Config
	now    Clock

	// mu makes Allow check and consume every limit as one step.
	mu sync.Mutex

	reqPerSecond   *TokenBucket
	reqPerMinute   *TokenBucket
	bytesPerMinute *SlidingWindow
	concurrent     *ConcurrentLimiter
}

// NewLimiter builds a limiter for config. A nil clock uses time.Now.
func NewLimiter(config Config, now Clock) *Limiter {
	if now == nil {
		now = time.Now
	}
	l := &Limiter{config: config, now: now}

	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = config.RequestsPerSecond * 2
		}
		l.reqPerSecond = NewTokenBucket(int64(burst), float64(config.RequestsPerSecond), now)
	}
	if config.RequestsPerMinute > 0 {
		l.reqPerMinute = NewTokenBucket(int64(config.RequestsPerMinute), float64(config.RequestsPerMinute)/60.0, now)
	}
	if config.BytesPerMinute > 0 {
		l.bytesPerMinute = NewSlidingWindow(time.Minute, time.Second, now)
	}
	if config.MaxConcurrent > 0 {
		l.concurrent = NewConcurrentLimiter(config.MaxConcurrent)
	}
	return l
}

// Allow checks a request carrying size expression bytes. Every limit is
// checked before any of them is consumed.
func (l *Limiter) Allow(size int) *Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bytesPerMinute != nil {
		used := l.bytesPerMinute.Sum()
		if used+int64(size) > l.config.BytesPerMinute {
			return &Decision{
				Reason:     ReasonBytesPerMinute,
				Limit:      l.config.BytesPerMinute,
				Remaining:  max(l.config.BytesPerMinute-used, 0),
				RetryAfter: l.bytesPerMinute.Window(),
			}
		}
	}

	if d := check(l.reqPerSecond, ReasonRequestsPerSecond); d != nil {
		return d
	}
	if d := check(l.reqPerMinute, ReasonRequestsPerMinute); d != nil {
		return d
	}

	// Only Allow takes from these buckets, so the checked tokens are still there.
	if l.reqPerSecond != nil {
		l.reqPerSecond.Take(1)
	}
	if l.reqPerMinute != nil {
		l.reqPerMinute.Take(1)
	}
	if l.bytesPerMinute != nil {
		l.bytesPerMinute.Add(int64(size))
	}

	d := &Decision{Allowed: true}
	if l.reqPerSecond != nil {
		d.Limit = l.reqPerSecond.Capacity()
		d.Remaining = l.reqPerSecond.Remaining()
	}
	return d
}

func check(tb *TokenBucket, reason Reason) *Decision {
	if tb == nil || tb.Remaining() >= 1 {
		return nil
	}
	return &Decision{
		Reason:     reason,
		Limit:      tb.Capacity(),
		Remaining:  0,
		RetryAfter: tb.TimeUntilAvailable(1),
	}
}

// Acquire takes a concurrency slot. It returns a release func when the slot
// was granted, or a rejection. The release func is never nil on success.
func (l *Limiter) Acquire() (release func(), rejected *Decision) {
	if l.concurrent == nil {
		return func() {}, nil
	}
	if !l.concurrent.Acquire() {
		return nil, &Decision{
			Reason:     ReasonConcurrency,
			Limit:      l.concurrent.Limit(),
			RetryAfter: time.Second,
		}
	}
	return l.concurrent.Release, nil
}

// InFlight returns the number of held concurrency slots.
func (l *Limiter) InFlight() int64 {
	if l.concurrent == nil {
		return 0
	}
	return l.concurrent.Current()
}
