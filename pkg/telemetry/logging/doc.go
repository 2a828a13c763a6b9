// Package logging provides structured logging on top of log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithEvaluationID(ctx, id)
//	logger.InfoContext(ctx, "evaluation finished", "sum", 6)
//	// {"level":"INFO","msg":"evaluation finished","sum":6,"evaluation_id":"..."}
//
// Components receive a *slog.Logger tagged with their name:
//
//	recorder := journal.NewRecorder(store, cfg, logger.Component("journal.recorder"))
//
// Long expression attributes are truncated so a large request body cannot
// dominate the log stream.
package logging
