// Package journal records every evaluation for later inspection.
//
// A Record captures the expression (truncated, with a hash of the full
// input), the sum or the combined issue message, the issue types and the
// evaluation time. Records flow through three subpackages:
//
//   - recorder: asynchronous, non-blocking writes from the evaluation path
//   - storage: SQLite (pure Go "sqlite" or cgo "sqlite3" driver) and an
//     in-memory backend
//   - retention: age and count based pruning on a cron schedule, with
//     optional JSON archiving through export
package journal
