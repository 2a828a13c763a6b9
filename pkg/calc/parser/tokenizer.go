package parser

import (
	"strings"

	"mercator-hq/strcalc/pkg/calc/ast"
)

// Tokenize splits body into tokens using the resolved delimiter.
//
// Under a custom delimiter, commas are first rewritten to the custom literal
// so that comma-joined numbers still contribute to the sum. The stray comma
// itself is reported by the mixed-delimiter detector, not here. Under the
// default delimiter, newlines are rewritten to commas before splitting.
//
// Token offsets always refer to the original body. A body with no
// separator yields a single token.
func Tokenize(body string, spec ast.DelimiterSpec) []ast.Token {
	if spec.IsCustom {
		return splitNormalized(body, ast.DefaultLiteral, spec.Literal)
	}
	return splitNormalized(body, "\n", ast.DefaultLiteral)
}

// splitNormalized replaces every occurrence of from with sep and splits the
// result on sep.
func splitNormalized(body, from, sep string) []ast.Token {
	if sep == "" {
		return []ast.Token{{Text: body, Offset: 0}}
	}

	// origin[i] is the body offset that produced byte i of the normalized text
	var normalized strings.Builder
	normalized.Grow(len(body))
	origin := make([]int, 0, len(body)+1)

	for i := 0; i < len(body); {
		if strings.HasPrefix(body[i:], from) {
			normalized.WriteString(sep)
			for range len(sep) {
				origin = append(origin, i)
			}
			i += len(from)
			continue
		}
		normalized.WriteByte(body[i])
		origin = append(origin, i)
		i++
	}
	origin = append(origin, len(body))

	text := normalized.String()
	tokens := make([]ast.Token, 0, strings.Count(text, sep)+1)

	start := 0
	for {
		idx := strings.Index(text[start:], sep)
		if idx < 0 {
			tokens = append(tokens, ast.Token{Text: text[start:], Offset: origin[start]})
			return tokens
		}
		tokens = append(tokens, ast.Token{Text: text[start : start+idx], Offset: origin[start]})
		start += idx + len(sep)
	}
}
