package parser

import (
	"strings"

	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// HeaderMarker introduces a custom delimiter declaration.
const HeaderMarker = "//"

// ResolveDelimiter extracts the delimiter declaration from the start of expr.
//
// When expr begins with "//", everything up to the first newline is the
// delimiter literal and the body starts after that newline. Otherwise the
// default delimiter applies and the body is expr itself. A marker with no
// newline after it yields a malformed_header issue.
func ResolveDelimiter(expr string) (ast.DelimiterSpec, string, error) {
	if !strings.HasPrefix(expr, HeaderMarker) {
		return ast.DefaultDelimiter(), expr, nil
	}

	literal, body, found := strings.Cut(expr[len(HeaderMarker):], "\n")
	if !found {
		return ast.DelimiterSpec{}, "", calcerrors.NewMalformedHeader(literal)
	}

	return ast.DelimiterSpec{Literal: literal, IsCustom: true}, body, nil
}
