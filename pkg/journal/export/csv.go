package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"mercator-hq/strcalc/pkg/journal"
)

// CSVExporter exports journal records as CSV, one row per record.
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header lists the CSV columns in order.
var Header = []string{
	"id", "request_id", "source", "recorded_at",
	"expression", "expression_hash", "expression_size", "truncated",
	"delimiter", "custom", "outcome", "sum", "tokens", "excluded",
	"error", "issue_types", "duration_ms",
}

// Export writes records to w. Issue types are joined with ";".
func (e *CSVExporter) Export(ctx context.Context, records []*journal.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return journal.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return journal.NewExportError("csv", len(records), err)
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return journal.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return journal.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(r *journal.Record) []string {
	return []string{
		r.ID,
		r.RequestID,
		r.Source,
		r.RecordedAt.UTC().Format(time.RFC3339Nano),
		r.Expression,
		r.ExpressionHash,
		strconv.Itoa(r.ExpressionSize),
		strconv.FormatBool(r.Truncated),
		r.Delimiter,
		strconv.FormatBool(r.Custom),
		r.Outcome(),
		strconv.Itoa(r.Sum),
		strconv.Itoa(r.Tokens),
		strconv.Itoa(r.Excluded),
		r.Error,
		strings.Join(r.IssueTypes, ";"),
		strconv.FormatFloat(float64(r.Duration)/float64(time.Millisecond), 'f', 3, 64),
	}
}
