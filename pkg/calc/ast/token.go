package ast

// Token is a substring candidate for integer parsing, bounded by separators.
type Token struct {
	Text   string // Token text after separator normalization
	Offset int    // Byte offset of the token in the body
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}
