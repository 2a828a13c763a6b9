package metrics

import (
	"time"

	"mercator-hq/strcalc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JournalMetrics tracks the evaluation journal.
//
// Metrics:
//   - strcalc_journal_writes_total: Record writes by status
//   - strcalc_journal_write_duration_seconds: Record write duration histogram
//   - strcalc_journal_dropped_total: Records dropped on a full buffer
//   - strcalc_journal_pruned_total: Records deleted by retention, by reason
type JournalMetrics struct {
	writesTotal   *prometheus.CounterVec
	writeDuration prometheus.Histogram
	droppedTotal  prometheus.Counter
	prunedTotal   *prometheus.CounterVec
}

// NewJournalMetrics creates and registers journal metrics with the provided registry.
func NewJournalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JournalMetrics {
	jm := &JournalMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "journal",
				Name:      "writes_total",
				Help:      "Total number of journal record writes",
			},
			[]string{"status"},
		),

		writeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "journal",
				Name:      "write_duration_seconds",
				Help:      "Duration of journal record writes in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
			},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "journal",
				Name:      "dropped_total",
				Help:      "Total number of journal records dropped because the buffer was full",
			},
		),

		prunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "journal",
				Name:      "pruned_total",
				Help:      "Total number of journal records deleted by retention",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		jm.writesTotal,
		jm.writeDuration,
		jm.droppedTotal,
		jm.prunedTotal,
	)

	return jm
}

// RecordWrite records one record write.
func (jm *JournalMetrics) RecordWrite(status string, duration time.Duration) {
	jm.writesTotal.WithLabelValues(status).Inc()
	jm.writeDuration.Observe(duration.Seconds())
}

// RecordDrop records one dropped record.
func (jm *JournalMetrics) RecordDrop() {
	jm.droppedTotal.Inc()
}

// RecordPrune records deleted records.
func (jm *JournalMetrics) RecordPrune(reason string, deleted int64) {
	if deleted > 0 {
		jm.prunedTotal.WithLabelValues(reason).Add(float64(deleted))
	}
}
