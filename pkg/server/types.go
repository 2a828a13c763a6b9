package server

import (
	"strconv"
	"strings"

	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
	"mercator-hq/strcalc/pkg/journal"
)

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Expression *string `json:"expression"`
}

// EvaluateResponse is returned for a successful evaluation.
type EvaluateResponse struct {
	ID  string `json:"id"`
	Sum int    `json:"sum"`
}

// ErrorResponse is returned for every failed request. Issues is set only
// when the expression was rejected by validation.
type ErrorResponse struct {
	ID     string          `json:"id,omitempty"`
	Error  string          `json:"error"`
	Issues []IssueResponse `json:"issues,omitempty"`
}

// IssueResponse describes one validation issue.
type IssueResponse struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Offset     *int     `json:"offset,omitempty"`
	Column     *int     `json:"column,omitempty"`
	Values     []string `json:"values,omitempty"` // Decimal text, exact even past the int range
	Suggestion string   `json:"suggestion,omitempty"`
}

// JournalResponse is the body of GET /v1/journal.
type JournalResponse struct {
	Records []*journal.Record `json:"records"`
	Total   int64             `json:"total"`
}

func toIssueResponses(issues []*calcerrors.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		ir := IssueResponse{
			Type:       string(issue.Type),
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		}
		if issue.Position != nil {
			offset, column := issue.Position.Offset, issue.Position.Column
			ir.Offset = &offset
			ir.Column = &column
		}
		for _, v := range issue.Values {
			if v.Overflow {
				ir.Values = append(ir.Values, strings.TrimSpace(v.Token.Text))
			} else {
				ir.Values = append(ir.Values, strconv.Itoa(v.Value))
			}
		}
		out = append(out, ir)
	}
	return out
}
