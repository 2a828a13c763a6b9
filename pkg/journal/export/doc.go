// Package export writes journal records as JSON or CSV.
package export
