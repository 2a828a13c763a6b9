package parser

import (
	"mercator-hq/strcalc/pkg/calc/ast"
)

// Parser turns raw input into an Expression. It resolves the delimiter,
// rejects trailing separators and tokenizes the body.
type Parser struct{}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses expr. The empty string parses to an empty Expression with no
// tokens. Malformed headers and trailing separators are returned as
// *errors.Issue values.
func (p *Parser) Parse(expr string) (*ast.Expression, error) {
	if expr == "" {
		return &ast.Expression{Delimiter: ast.DefaultDelimiter()}, nil
	}

	spec, body, err := ResolveDelimiter(expr)
	if err != nil {
		return nil, err
	}

	if err := CheckTrailingSeparator(body, spec); err != nil {
		return nil, err
	}

	return &ast.Expression{
		Source:    expr,
		Body:      body,
		Delimiter: spec,
		Tokens:    Tokenize(body, spec),
	}, nil
}
