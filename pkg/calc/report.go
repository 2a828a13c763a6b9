package calc

import (
	"mercator-hq/strcalc/pkg/calc/ast"
	"mercator-hq/strcalc/pkg/calc/parser"
	"mercator-hq/strcalc/pkg/calc/validator"
)

// Report describes how an expression was evaluated.
type Report struct {
	Source         string                   // Raw input
	Expression     *ast.Expression          // Nil when parsing failed
	Classification validator.Classification // Zero until tokens are classified
	Sum            int                      // Valid only when evaluation succeeded
}

// Delimiter returns the resolved delimiter, or the default when parsing did
// not get that far.
func (r *Report) Delimiter() ast.DelimiterSpec {
	if r.Expression == nil {
		return ast.DefaultDelimiter()
	}
	return r.Expression.Delimiter
}

// Tokens returns the tokens found in the body.
func (r *Report) Tokens() []ast.Token {
	if r.Expression == nil {
		return nil
	}
	return r.Expression.Tokens
}

// Body returns the text after any delimiter header. Issue positions are
// offsets into it. When the header itself is malformed the whole source is
// returned.
func (r *Report) Body() string {
	if r.Expression != nil {
		return r.Expression.Body
	}
	if _, body, err := parser.ResolveDelimiter(r.Source); err == nil {
		return body
	}
	return r.Source
}
