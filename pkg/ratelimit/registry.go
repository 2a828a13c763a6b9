package ratelimit

import (
	"sync"
	"time"
)

// Registry keeps one Limiter per client key.
type Registry struct {
	config  Config
	idleTTL time.Duration
	now     Clock

	mu        sync.Mutex
	limiters  map[string]*entry
	lastSweep time.Time
}

type entry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewRegistry returns a registry whose limiters use config. Clients unseen
// for idleTTL are dropped by Sweep, which Get also runs once per idleTTL.
func NewRegistry(config Config, idleTTL time.Duration) *Registry {
	return NewRegistryWithClock(config, idleTTL, time.Now)
}

// NewRegistryWithClock is NewRegistry with an explicit clock.
func NewRegistryWithClock(config Config, idleTTL time.Duration, now Clock) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		config:    config,
		idleTTL:   idleTTL,
		now:       now,
		limiters:  make(map[string]*entry),
		lastSweep: now(),
	}
}

// Get returns the limiter for key, creating it on first use.
func (r *Registry) Get(key string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.idleTTL > 0 && now.Sub(r.lastSweep) >= r.idleTTL {
		r.sweepLocked(now)
	}

	e, ok := r.limiters[key]
	if !ok {
		e = &entry{limiter: NewLimiter(r.config, r.now)}
		r.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Sweep drops idle limiters that hold no concurrency slot and returns how
// many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	r.lastSweep = now
	cutoff := now.Add(-r.idleTTL)
	removed := 0
	for key, e := range r.limiters {
		if e.lastSeen.Before(cutoff) && e.limiter.InFlight() == 0 {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
