package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"mercator-hq/strcalc/pkg/ratelimit"
	"mercator-hq/strcalc/pkg/security/auth"
	"mercator-hq/strcalc/pkg/telemetry/logging"
)

// admit applies the client's rate limits to an expression of size bytes.
// When it returns false the 429 response has already been written. The
// release func must be called once the evaluation is done.
func (s *Server) admit(w http.ResponseWriter, r *http.Request, size int) (func(), bool) {
	if s.limits == nil {
		return func() {}, true
	}

	client := s.clientKey(r)
	limiter := s.limits.Get(client)

	decision := limiter.Allow(size)
	if !decision.Allowed {
		s.rateLimited(w, r, client, decision)
		return nil, false
	}
	if decision.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
	}

	release, rejected := limiter.Acquire()
	if rejected != nil {
		s.rateLimited(w, r, client, rejected)
		return nil, false
	}
	return release, true
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request, client string, d *ratelimit.Decision) {
	s.deps.Metrics.RecordRateLimited(string(d.Reason))
	logging.FromContext(r.Context(), s.logger).Warn("rate limit exceeded",
		"client", client,
		"reason", string(d.Reason),
		"retry_after", d.RetryAfter.String(),
	)

	retry := max(int64(math.Ceil(d.RetryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	writeError(w, http.StatusTooManyRequests, "", fmt.Sprintf("rate limit exceeded: %s", d.Reason))
}

// clientKey identifies the caller for rate limiting. Authenticated callers
// are keyed by API key name, others by address.
func (s *Server) clientKey(r *http.Request) string {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return "key:" + id.Name
	}
	if s.config.RateLimit.TrustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return "ip:" + ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
