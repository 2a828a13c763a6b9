package ast

import "strconv"

// ParsedNumber is a token whose text parsed as a signed decimal integer.
type ParsedNumber struct {
	Value int   // Parsed value, clamped to the int range when Overflow is set
	Token Token // Source token

	// Overflow is set when the literal does not fit in an int. Text then
	// holds the exact decimal form.
	Overflow bool
	Text     string
}

// String returns the canonical decimal form of the number ("-007" -> "-7").
func (n ParsedNumber) String() string {
	if n.Text != "" {
		return n.Text
	}
	return strconv.Itoa(n.Value)
}

// IsNegative reports whether the number is below zero.
func (n ParsedNumber) IsNegative() bool {
	return n.Value < 0
}
