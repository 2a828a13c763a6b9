package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// HashString returns the hex-encoded SHA-256 of s. The empty string hashes
// to the empty string.
func HashString(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Truncate shortens s to at most max bytes without splitting a UTF-8
// sequence. It reports whether anything was removed.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
