package export

import (
	"fmt"

	"mercator-hq/strcalc/pkg/journal"
)

// Supported export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// New returns the exporter for format.
func New(format string) (journal.Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(true), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want %s or %s)", format, FormatJSON, FormatCSV)
	}
}
