package ast

// Expression is the parsed form of one input string.
type Expression struct {
	Source    string        // Raw input, never modified
	Body      string        // Input with the delimiter header removed
	Delimiter DelimiterSpec // Resolved delimiter
	Tokens    []Token       // Tokens in left-to-right order
}

// IsEmpty reports whether the source was the empty string. Empty expressions
// evaluate to zero without running any other stage.
func (e *Expression) IsEmpty() bool {
	return e.Source == ""
}

// HeaderLen returns the byte length of the "//<literal>\n" header, or zero
// when the default delimiter is in effect.
func (e *Expression) HeaderLen() int {
	return len(e.Source) - len(e.Body)
}
