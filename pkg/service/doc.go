// Package service runs evaluations for the CLI and the HTTP server.
//
// A Service holds the evaluator built from the current configuration and
// applies the input size limit. Each evaluation gets an ID that appears in
// logs, on the trace span and in the journal record. Reload swaps limits
// atomically so a config watcher can update a running server.
package service
