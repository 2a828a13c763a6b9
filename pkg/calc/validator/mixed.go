package validator

import (
	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// DetectMixedDelimiter scans body for a comma used while a custom delimiter
// is declared. Only the first such comma is reported. The scan is read-only
// and returns nil under the default delimiter.
func DetectMixedDelimiter(body string, spec ast.DelimiterSpec) *calcerrors.Issue {
	if !spec.IsCustom || spec.Literal == "" {
		return nil
	}

	column := 0
	for i := 0; i < len(body); {
		class, width := ClassifyAt(body, i, spec)
		if !class.Allowed() {
			return calcerrors.NewMixedDelimiter(spec.Literal, ast.Position{Offset: i, Column: column})
		}

		if class == CharDelimiter {
			column += len([]rune(spec.Literal))
		} else {
			column++
		}
		i += width
	}

	return nil
}
