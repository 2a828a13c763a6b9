// Package ratelimit limits how fast each client may submit expressions to
// the evaluation server.
//
// A Limiter combines three strategies for one client:
//
//   - Token buckets for requests per second and per minute
//   - A sliding window over expression bytes per minute
//   - A concurrency limit on in-flight evaluations
//
// A Registry hands out one Limiter per client key and forgets clients that
// have been idle longer than its TTL:
//
//	reg := ratelimit.NewRegistry(ratelimit.Config{
//	    RequestsPerSecond: 10,
//	    BytesPerMinute:    1 << 20,
//	    MaxConcurrent:     4,
//	}, 10*time.Minute)
//
//	lim := reg.Get(clientIP)
//	if d := lim.Allow(len(body)); !d.Allowed {
//	    // reject with d.RetryAfter
//	}
//
// All types are safe for concurrent use.
package ratelimit
