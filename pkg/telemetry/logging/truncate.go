package logging

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the default byte limit for truncated attributes.
const DefaultMaxValueLen = 256

// TruncatedKeys are the attribute keys whose string values are shortened.
// Expressions can be up to the configured request limit, which is far too
// large for a log line.
var TruncatedKeys = map[string]bool{
	"expression": true,
	"body":       true,
	"line":       true,
}

// Truncator shortens long string attribute values.
type Truncator struct {
	maxLen int
}

// NewTruncator creates a Truncator. Zero selects DefaultMaxValueLen and a
// negative limit disables truncation.
func NewTruncator(maxLen int) *Truncator {
	if maxLen == 0 {
		maxLen = DefaultMaxValueLen
	}
	return &Truncator{maxLen: maxLen}
}

// Truncate shortens s to at most maxLen bytes on a rune boundary, noting how
// many bytes were cut.
func (t *Truncator) Truncate(s string) string {
	if t.maxLen < 0 || len(s) <= t.maxLen {
		return s
	}
	cut := t.maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d more bytes)", s[:cut], len(s)-cut)
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (t *Truncator) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if !TruncatedKeys[a.Key] || a.Value.Kind() != slog.KindString {
		return a
	}
	return slog.String(a.Key, t.Truncate(a.Value.String()))
}
