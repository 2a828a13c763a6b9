package ratelimit

import "time"

// Config holds the limits applied to a single client. Zero disables a
// limit.
type Config struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond int

	// Burst is the request bucket capacity. Zero means twice
	// RequestsPerSecond.
	Burst int

	// RequestsPerMinute caps requests over a minute.
	RequestsPerMinute int

	// BytesPerMinute caps expression bytes over a rolling minute.
	BytesPerMinute int64

	// MaxConcurrent caps in-flight evaluations.
	MaxConcurrent int
}

// Enabled reports whether any limit is set.
func (c Config) Enabled() bool {
	return c.RequestsPerSecond > 0 || c.RequestsPerMinute > 0 ||
		c.BytesPerMinute > 0 || c.MaxConcurrent > 0
}

// Reason names the limit that rejected a request. It is used as a metric
// label.
type Reason string

const (
	ReasonRequestsPerSecond Reason = "requests_per_second"
	ReasonRequestsPerMinute Reason = "requests_per_minute"
	ReasonBytesPerMinute    Reason = "bytes_per_minute"
	ReasonConcurrency       Reason = "concurrency"
)

// Decision is the result of a rate limit check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Reason is set when Allowed is false.
	Reason Reason

	// Limit is the configured value of the limit that decided.
	Limit int64

	// Remaining is what is left of that limit after this request.
	Remaining int64

	// RetryAfter suggests when to retry a rejected request.
	RetryAfter time.Duration
}

// Clock returns the current time. Tests replace it to control refills.
type Clock func() time.Time
