package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow sums values added over a rolling window, kept as a ring
// of fixed-width buckets.
type SlidingWindow struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []bucket
	now        Clock
	mu         sync.Mutex
}

type bucket struct {
	start time.Time
	value int64
}

// NewSlidingWindow returns an empty window of window/bucketSize buckets.
func NewSlidingWindow(window, bucketSize time.Duration, now Clock) *SlidingWindow {
	if now == nil {
		now = time.Now
	}
	n := int(window / bucketSize)
	if n < 1 {
		n = 1
	}
	return &SlidingWindow{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]bucket, n),
		now:        now,
	}
}

// Add records value in the current bucket.
func (sw *SlidingWindow) Add(value int64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	start := sw.now().Truncate(sw.bucketSize)
	idx := int(start.UnixNano()/int64(sw.bucketSize)) % len(sw.buckets)
	if !sw.buckets[idx].start.Equal(start) {
		sw.buckets[idx] = bucket{start: start}
	}
	sw.buckets[idx].value += value
}

// Sum returns the total inside the window.
func (sw *SlidingWindow) Sum() int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Add(-sw.window)
	var sum int64
	for _, b := range sw.buckets {
		if !b.start.IsZero() && b.start.After(cutoff) {
			sum += b.value
		}
	}
	return sum
}

// Window returns the window length.
func (sw *SlidingWindow) Window() time.Duration {
	return sw.window
}
