package metrics

import (
	"time"

	"mercator-hq/strcalc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeTooLarge = "too_large"
)

// Collector owns every Prometheus metric strcalc exports. All Record methods
// are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	journalMetrics    *JournalMetrics
	httpMetrics       *HTTPMetrics
}

// Evaluation describes one finished evaluation for RecordEvaluation.
type Evaluation struct {
	// Outcome is one of OutcomeSuccess, OutcomeRejected or OutcomeTooLarge.
	Outcome string

	// Duration is the wall time spent evaluating.
	Duration time.Duration

	// Tokens is the number of tokens the body split into.
	Tokens int

	// Excluded is the number of values above the maximum.
	Excluded int

	// Dropped is the number of tokens that were not numbers.
	Dropped int

	// IssueTypes lists the issue type of each reported problem.
	IssueTypes []string
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "strcalc",
//		Subsystem: "evaluator",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}
	if len(cfg.TokenCountBuckets) == 0 {
		cfg.TokenCountBuckets = config.DefaultTokenCountBuckets
	}

	return &Collector{
		config:            cfg,
		registry:          registry,
		evaluationMetrics: NewEvaluationMetrics(cfg, registry),
		journalMetrics:    NewJournalMetrics(cfg, registry),
		httpMetrics:       NewHTTPMetrics(cfg, registry),
	}
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEvaluation records metrics for a finished evaluation.
//
// Example:
//
//	collector.RecordEvaluation(metrics.Evaluation{
//		Outcome:    metrics.OutcomeRejected,
//		Duration:   40 * time.Microsecond,
//		Tokens:     3,
//		IssueTypes: []string{"negative_numbers"},
//	})
func (c *Collector) RecordEvaluation(ev Evaluation) {
	if !c.Enabled() {
		return
	}

	c.evaluationMetrics.Record(ev)
}

// RecordJournalWrite records the result of persisting one journal record.
// Status is "success" or "error".
func (c *Collector) RecordJournalWrite(status string, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.journalMetrics.RecordWrite(status, duration)
}

// RecordJournalDrop records a journal record dropped because the recorder
// buffer was full.
func (c *Collector) RecordJournalDrop() {
	if !c.Enabled() {
		return
	}

	c.journalMetrics.RecordDrop()
}

// RecordJournalPrune records records deleted by a retention pass.
// Reason is "age" or "count".
func (c *Collector) RecordJournalPrune(reason string, deleted int64) {
	if !c.Enabled() {
		return
	}

	c.journalMetrics.RecordPrune(reason, deleted)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.httpMetrics.Record(route, code, duration)
}

// RecordRateLimited records a request rejected by a rate limit.
func (c *Collector) RecordRateLimited(reason string) {
	if !c.Enabled() {
		return
	}

	c.httpMetrics.RecordRateLimited(reason)
}

// RecordAuthFailure records a request rejected by API key authentication.
func (c *Collector) RecordAuthFailure(reason string) {
	if !c.Enabled() {
		return
	}

	c.httpMetrics.RecordAuthFailure(reason)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
