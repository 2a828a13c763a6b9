package ast

import "fmt"

// DefaultLiteral is the separator used when no custom delimiter is declared.
// A newline is accepted as a secondary default separator.
const DefaultLiteral = ","

// DelimiterSpec describes the active separator for one expression.
type DelimiterSpec struct {
	Literal  string // Separator text, may be several characters long
	IsCustom bool   // True when declared through a "//<literal>\n" header
}

// DefaultDelimiter returns the comma delimiter used when no header is present.
func DefaultDelimiter() DelimiterSpec {
	return DelimiterSpec{Literal: DefaultLiteral}
}

// String returns the delimiter literal quoted the way it appears in messages.
func (d DelimiterSpec) String() string {
	return fmt.Sprintf("'%s'", d.Literal)
}
