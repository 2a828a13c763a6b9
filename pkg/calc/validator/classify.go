package validator

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"mercator-hq/strcalc/pkg/calc/ast"
)

// DefaultMaxValue is the largest value that still counts toward the sum.
const DefaultMaxValue = 1000

// MaxValueLimit caps the threshold so that sums of retained values fit in
// an int.
const MaxValueLimit = math.MaxInt32

// Classification partitions the tokens of one expression.
type Classification struct {
	Retained  []ast.ParsedNumber // Values <= max, in token order
	Excluded  []ast.ParsedNumber // Values > max, ignored without error
	Negatives []ast.ParsedNumber // Values < 0, in token order
	Dropped   []ast.Token        // Tokens that are not integers
	Sum       int                // Sum of Retained
}

// Classifier parses tokens into numbers and sorts them into a Classification.
type Classifier struct {
	maxValue int
}

// NewClassifier creates a classifier that excludes values above maxValue.
// A maxValue above MaxValueLimit is lowered to it.
func NewClassifier(maxValue int) *Classifier {
	return &Classifier{maxValue: min(maxValue, MaxValueLimit)}
}

// MaxValue returns the inclusive upper bound for summed values.
func (c *Classifier) MaxValue() int {
	return c.maxValue
}

// Classify parses each token. Blank tokens are skipped. Tokens that do not
// parse as integers are recorded in Dropped and otherwise ignored: under a
// custom delimiter the malformed text is already explained by a
// mixed_delimiter issue, and no separate issue is raised for it.
func (c *Classifier) Classify(tokens []ast.Token) Classification {
	var result Classification

	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}

		n, ok := ParseNumber(tok)
		if !ok {
			result.Dropped = append(result.Dropped, tok)
			continue
		}

		if n.IsNegative() {
			result.Negatives = append(result.Negatives, n)
		}

		if !n.IsNegative() && (n.Overflow || n.Value > c.maxValue) {
			result.Excluded = append(result.Excluded, n)
			continue
		}

		result.Retained = append(result.Retained, n)
		result.Sum += n.Value
	}

	return result
}

// ParseNumber parses the token text as a signed decimal integer. Surrounding
// whitespace and a leading '+' are accepted. Literals beyond the int range
// are returned with Overflow set and Value clamped.
func ParseNumber(tok ast.Token) (ast.ParsedNumber, bool) {
	text := strings.TrimSpace(tok.Text)

	v, err := strconv.Atoi(text)
	if err == nil {
		return ast.ParsedNumber{Value: v, Token: tok}, true
	}

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
		return ast.ParsedNumber{}, false
	}

	exact, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return ast.ParsedNumber{}, false
	}

	clamped := math.MaxInt
	if exact.Sign() < 0 {
		clamped = math.MinInt
	}
	return ast.ParsedNumber{Value: clamped, Token: tok, Overflow: true, Text: exact.String()}, true
}
