package journal

import (
	"context"
	"io"
	"time"
)

// Record sources.
const (
	SourceCLI  = "cli"
	SourceHTTP = "http"
)

// Query outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

// Record is the journal entry for one evaluation.
type Record struct {
	// Identity
	ID        string `json:"id"`                   // UUID v4
	RequestID string `json:"request_id,omitempty"` // HTTP request ID, if any
	Source    string `json:"source"`               // "cli" or "http"

	// Input
	Expression     string `json:"expression"`      // Possibly truncated
	ExpressionHash string `json:"expression_hash"` // SHA-256 of the full expression
	ExpressionSize int    `json:"expression_size"` // Bytes in the full expression
	Truncated      bool   `json:"truncated"`       // Expression was shortened
	Delimiter      string `json:"delimiter"`       // Active delimiter literal
	Custom         bool   `json:"custom"`          // Delimiter came from a header

	// Result
	Sum        int      `json:"sum"`
	Tokens     int      `json:"tokens"`
	Excluded   int      `json:"excluded"`              // Values above the maximum
	Error      string   `json:"error,omitempty"`       // Combined issue message
	IssueTypes []string `json:"issue_types,omitempty"` // Issue type per problem

	// Timing
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Succeeded reports whether the evaluation produced a sum.
func (r *Record) Succeeded() bool {
	return r.Error == ""
}

// Outcome returns OutcomeSuccess or OutcomeRejected.
func (r *Record) Outcome() string {
	if r.Succeeded() {
		return OutcomeSuccess
	}
	return OutcomeRejected
}

// Query defines filter parameters for reading journal records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive

	// Filters
	Outcome   string `json:"outcome,omitempty"`    // "success" or "rejected"
	IssueType string `json:"issue_type,omitempty"` // Records reporting this issue type
	Source    string `json:"source,omitempty"`     // "cli" or "http"

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Ascending returns oldest records first. The default is newest first.
	Ascending bool `json:"ascending,omitempty"`
}

// DefaultQueryLimit applies when Query.Limit is zero.
const DefaultQueryLimit = 100

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first unless
	// Ascending is set.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters. Limit and
	// Offset are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteOlderThan removes records recorded before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// TrimTo removes the oldest records until at most max remain.
	TrimTo(ctx context.Context, max int64) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes records in some output format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}

// Observer receives journal events. *metrics.Collector implements it.
type Observer interface {
	RecordJournalWrite(status string, duration time.Duration)
	RecordJournalDrop()
	RecordJournalPrune(reason string, deleted int64)
}

// NopObserver discards journal events.
type NopObserver struct{}

func (NopObserver) RecordJournalWrite(string, time.Duration) {}
func (NopObserver) RecordJournalDrop()                       {}
func (NopObserver) RecordJournalPrune(string, int64)         {}
