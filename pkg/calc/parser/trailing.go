package parser

import (
	"strings"
	"unicode/utf8"

	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// defaultSeparators are the separators accepted when no header is present.
var defaultSeparators = []string{ast.DefaultLiteral, "\n"}

// CheckTrailingSeparator rejects a body that ends with the active delimiter
// literal, or, under the default delimiter, with a comma or newline.
//
// An empty custom literal is a suffix of every body, so "//\n..." always
// fails here.
func CheckTrailingSeparator(body string, spec ast.DelimiterSpec) error {
	if strings.HasSuffix(body, spec.Literal) {
		return trailing(body, spec.Literal)
	}

	if !spec.IsCustom {
		for _, sep := range defaultSeparators {
			if strings.HasSuffix(body, sep) {
				return trailing(body, sep)
			}
		}
	}

	return nil
}

func trailing(body, sep string) *calcerrors.Issue {
	offset := len(body) - len(sep)
	return calcerrors.NewTrailingSeparator(sep, ast.Position{
		Offset: offset,
		Column: utf8.RuneCountInString(body[:offset]),
	})
}
