package ast

import "fmt"

// Position locates a character inside the expression body.
type Position struct {
	Offset int // Byte offset in the body
	Column int // Character index in the body (0-based)
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("position %d", p.Column)
}
