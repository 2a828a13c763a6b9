package calc

import (
	"mercator-hq/strcalc/pkg/calc/ast"
	"mercator-hq/strcalc/pkg/calc/parser"
	"mercator-hq/strcalc/pkg/calc/validator"
)

// DefaultMaxValue is the largest value included in a sum unless overridden.
const DefaultMaxValue = validator.DefaultMaxValue

// MaxValueLimit is the largest threshold WithMaxValue accepts.
const MaxValueLimit = validator.MaxValueLimit

// Evaluator evaluates delimiter-separated integer lists. An Evaluator is
// immutable after New returns and may be shared between goroutines.
type Evaluator struct {
	maxValue  int
	parser    *parser.Parser
	validator *validator.Validator
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxValue sets the inclusive upper bound for values that count toward
// the sum. Larger values are ignored without an error. Bounds above
// MaxValueLimit are lowered to it.
func WithMaxValue(maxValue int) Option {
	return func(e *Evaluator) {
		e.maxValue = maxValue
	}
}

// New creates an evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{maxValue: DefaultMaxValue}
	for _, opt := range opts {
		opt(e)
	}
	e.maxValue = min(e.maxValue, MaxValueLimit)
	e.parser = parser.NewParser()
	e.validator = validator.NewValidator(e.maxValue)
	return e
}

// MaxValue returns the evaluator's inclusive sum threshold.
func (e *Evaluator) MaxValue() int {
	return e.maxValue
}

// Evaluate returns the sum of the numbers in expression.
//
// On failure the error is an *errors.Issue for malformed headers and
// trailing separators, or an *errors.IssueList holding negative_numbers
// and/or mixed_delimiter issues. No partial sum is returned with an error.
func (e *Evaluator) Evaluate(expression string) (int, error) {
	report, err := e.Explain(expression)
	if err != nil {
		return 0, err
	}
	return report.Sum, nil
}

// Explain evaluates expression and returns every intermediate stage. The
// report is populated as far as evaluation got, even when err is non-nil.
func (e *Evaluator) Explain(expression string) (*Report, error) {
	report := &Report{Source: expression}

	expr, err := e.parser.Parse(expression)
	if err != nil {
		return report, err
	}
	report.Expression = expr

	if expr.IsEmpty() {
		return report, nil
	}

	classification, err := e.validator.Validate(expr)
	report.Classification = classification
	if err != nil {
		return report, err
	}

	report.Sum = classification.Sum
	return report, nil
}

// Evaluate evaluates expression with the default settings.
func Evaluate(expression string) (int, error) {
	return New().Evaluate(expression)
}

// Explain explains expression with the default settings.
func Explain(expression string) (*Report, error) {
	return New().Explain(expression)
}

// Parse parses expression without classifying its values.
// Use this to inspect the delimiter and tokens before validation.
func Parse(expression string) (*ast.Expression, error) {
	return parser.NewParser().Parse(expression)
}
