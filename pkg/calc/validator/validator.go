package validator

import (
	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// Validator runs the checks that need a tokenized expression: mixed
// delimiter detection and value classification. Their results are combined
// into a single report.
type Validator struct {
	classifier *Classifier
}

// NewValidator creates a validator that excludes values above maxValue from
// the sum.
func NewValidator(maxValue int) *Validator {
	return &Validator{
		classifier: NewClassifier(maxValue),
	}
}

// Validate classifies the expression's tokens and checks the body for mixed
// delimiters. The classification is always returned. The error is non-nil
// when negatives or a mixed delimiter were found.
func (v *Validator) Validate(expr *ast.Expression) (Classification, error) {
	// Detection and classification read the same body independently
	mixed := DetectMixedDelimiter(expr.Body, expr.Delimiter)
	result := v.classifier.Classify(expr.Tokens)

	return result, Aggregate(result, mixed)
}

// Aggregate builds the combined report. Negatives always come first and the
// mixed delimiter second, regardless of which was detected first.
func Aggregate(result Classification, mixed *calcerrors.Issue) error {
	issues := calcerrors.NewIssueList()

	if len(result.Negatives) > 0 {
		issues.Add(calcerrors.NewNegativeNumbers(result.Negatives))
	}
	issues.Add(mixed)

	return issues.ToError()
}
