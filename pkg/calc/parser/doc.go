// Package parser converts expression strings into ast.Expression values.
//
// Parsing runs three stages in order:
//
//  1. ResolveDelimiter splits off an optional "//<literal>\n" header.
//  2. CheckTrailingSeparator rejects bodies that end with a separator.
//  3. Tokenize splits the body into ast.Tokens with body-relative offsets.
//
// The first two stages are the only ones that fail, and their failures are
// fatal: an *errors.Issue is returned and no tokens are produced.
//
// Example:
//
//	p := parser.NewParser()
//	expr, err := p.Parse("//;\n1;2")
//	// expr.Delimiter = {Literal: ";", IsCustom: true}
//	// expr.Tokens    = [{"1" 0} {"2" 2}]
package parser
