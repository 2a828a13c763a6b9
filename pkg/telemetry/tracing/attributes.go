package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for evaluation spans.
const (
	AttrEvaluationID   = "strcalc.evaluation.id"
	AttrExpressionSize = "strcalc.expression.bytes"
	AttrDelimiter      = "strcalc.delimiter"
	AttrCustom         = "strcalc.delimiter.custom"
	AttrTokens         = "strcalc.tokens"
	AttrSum            = "strcalc.sum"
	AttrExcluded       = "strcalc.excluded"
	AttrIssueTypes     = "strcalc.issue.types"
)

// SetExpressionAttributes records the size of the input and its delimiter.
func SetExpressionAttributes(span trace.Span, id string, size int, delimiter string, custom bool) {
	span.SetAttributes(
		attribute.String(AttrEvaluationID, id),
		attribute.Int(AttrExpressionSize, size),
		attribute.String(AttrDelimiter, delimiter),
		attribute.Bool(AttrCustom, custom),
	)
}

// SetResultAttributes records a successful evaluation.
func SetResultAttributes(span trace.Span, tokens, sum, excluded int) {
	span.SetAttributes(
		attribute.Int(AttrTokens, tokens),
		attribute.Int(AttrSum, sum),
		attribute.Int(AttrExcluded, excluded),
	)
	span.SetStatus(codes.Ok, "")
}

// RecordIssues marks the span as failed with the reported issue types.
func RecordIssues(span trace.Span, err error, issueTypes []string) {
	span.SetAttributes(attribute.StringSlice(AttrIssueTypes, issueTypes))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
