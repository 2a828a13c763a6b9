package metrics

import (
	"mercator-hq/strcalc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks expression evaluation.
//
// Metrics:
//   - strcalc_evaluator_evaluations_total: Evaluations by outcome
//   - strcalc_evaluator_evaluation_duration_seconds: Evaluation duration histogram
//   - strcalc_evaluator_issues_total: Reported issues by type
//   - strcalc_evaluator_expression_tokens: Tokens per expression histogram
//   - strcalc_evaluator_excluded_values_total: Values ignored for exceeding the maximum
//   - strcalc_evaluator_dropped_tokens_total: Tokens ignored for not being numbers
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	issuesTotal        *prometheus.CounterVec
	expressionTokens   prometheus.Histogram
	excludedTotal      prometheus.Counter
	droppedTotal       prometheus.Counter
}

// NewEvaluationMetrics creates and registers evaluation metrics with the provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of expressions evaluated",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of expression evaluation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),

		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "issues_total",
				Help:      "Total number of issues reported, by issue type",
			},
			[]string{"type"},
		),

		expressionTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "expression_tokens",
				Help:      "Number of tokens per evaluated expression",
				Buckets:   cfg.TokenCountBuckets,
			},
		),

		excludedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "excluded_values_total",
				Help:      "Total number of values ignored for exceeding the maximum",
			},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dropped_tokens_total",
				Help:      "Total number of tokens ignored for not being numbers",
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.issuesTotal,
		em.expressionTokens,
		em.excludedTotal,
		em.droppedTotal,
	)

	return em
}

// Record records one evaluation.
func (em *EvaluationMetrics) Record(ev Evaluation) {
	em.evaluationsTotal.WithLabelValues(ev.Outcome).Inc()
	em.evaluationDuration.WithLabelValues(ev.Outcome).Observe(ev.Duration.Seconds())

	for _, typ := range ev.IssueTypes {
		em.issuesTotal.WithLabelValues(typ).Inc()
	}

	if ev.Outcome == OutcomeTooLarge {
		return
	}
	em.expressionTokens.Observe(float64(ev.Tokens))
	if ev.Excluded > 0 {
		em.excludedTotal.Add(float64(ev.Excluded))
	}
	if ev.Dropped > 0 {
		em.droppedTotal.Add(float64(ev.Dropped))
	}
}
