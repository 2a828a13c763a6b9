package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/strcalc/pkg/journal"
)

// JSONExporter exports journal records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w. An empty slice is written as [].
func (e *JSONExporter) Export(ctx context.Context, records []*journal.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return journal.NewExportError("json", len(records), err)
	}
	if records == nil {
		records = []*journal.Record{}
	}

	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(records); err != nil {
		return journal.NewExportError("json", len(records), err)
	}
	return nil
}
