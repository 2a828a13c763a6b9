// Package retention deletes old journal records.
//
// A Pruner applies two limits in order: records older than Days are
// deleted, then the oldest records beyond MaxRecords. When ArchivePath is
// set, records are written to a JSON file before deletion. A Scheduler runs
// the pruner on a cron expression.
package retention
