// Package server exposes the evaluation service over HTTP.
//
// # Routes
//
//	POST /v1/evaluate   {"expression": "..."} -> 200 {"id","sum"} or 422 {"id","error","issues"}
//	GET  /v1/journal    recent journal records (when the journal is enabled)
//	GET  /health        liveness
//	GET  /ready         readiness, including the evaluator self-test and journal ping
//	GET  /version       build information
//	GET  /metrics       Prometheus metrics (path configurable)
//
// Every response carries an X-Request-ID header. A client-supplied value is
// reused, otherwise a UUID is assigned. The request ID appears in logs and in
// journal records.
//
// # Access Control
//
// When server.auth is enabled the /v1 routes require an API key and answer
// 401 without one. When server.rate_limit is enabled each client is held to
// its own limits on POST /v1/evaluate and gets 429 with Retry-After once
// over them.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, server.Deps{
//	    Service: svc,
//	    Journal: store,
//	    Health:  checker,
//	    Metrics: collector,
//	    Logger:  logger,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server
