// Package metrics provides Prometheus metrics collection for strcalc.
//
// # Metrics Categories
//
//   - Evaluation Metrics: outcome counts, duration, issue types, token counts,
//     excluded values and dropped tokens
//   - Journal Metrics: record writes, drops and retention deletions
//   - HTTP Metrics: requests by route and status code
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordEvaluation(metrics.Evaluation{
//		Outcome:  metrics.OutcomeSuccess,
//		Duration: elapsed,
//		Tokens:   3,
//	})
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
