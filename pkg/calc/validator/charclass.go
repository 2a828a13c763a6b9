package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"mercator-hq/strcalc/pkg/calc/ast"
)

// CharClass is the role a character plays while scanning a body for stray
// separators.
type CharClass int

const (
	// CharOther is any character with no role. It is skipped silently.
	CharOther CharClass = iota
	// CharDelimiter marks the start of the custom delimiter literal.
	CharDelimiter
	// CharDigit is a decimal digit.
	CharDigit
	// CharMinus is the '-' sign.
	CharMinus
	// CharNewline is '\n'.
	CharNewline
	// CharComma is ',' appearing outside the custom delimiter.
	CharComma
)

var charClassNames = [...]string{
	CharOther:     "other",
	CharDelimiter: "delimiter",
	CharDigit:     "digit",
	CharMinus:     "minus",
	CharNewline:   "newline",
	CharComma:     "comma",
}

// String returns the class name.
func (c CharClass) String() string {
	if c < 0 || int(c) >= len(charClassNames) {
		return "unknown"
	}
	return charClassNames[c]
}

// Allowed reports whether the class is tolerated under a custom delimiter.
func (c CharClass) Allowed() bool {
	return c != CharComma
}

// ClassifyAt classifies the character starting at byte offset i of body and
// returns the number of bytes it spans. The delimiter literal takes
// precedence over every other class, so a comma inside the literal is never
// reported as CharComma.
func ClassifyAt(body string, i int, spec ast.DelimiterSpec) (CharClass, int) {
	if spec.Literal != "" && strings.HasPrefix(body[i:], spec.Literal) {
		return CharDelimiter, len(spec.Literal)
	}

	r, width := utf8.DecodeRuneInString(body[i:])
	switch {
	case unicode.IsDigit(r):
		return CharDigit, width
	case r == '-':
		return CharMinus, width
	case r == '\n':
		return CharNewline, width
	case r == ',':
		return CharComma, width
	default:
		return CharOther, width
	}
}
