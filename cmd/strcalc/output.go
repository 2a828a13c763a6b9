package main

import (
	"fmt"
	"strings"

	"mercator-hq/strcalc/pkg/calc"
	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// IssueOutput is the JSON form of one validation issue.
type IssueOutput struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Column     *int     `json:"column,omitempty"`
	Values     []string `json:"values,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// StagesOutput lists the intermediate stages of one evaluation.
type StagesOutput struct {
	Delimiter string   `json:"delimiter"`
	Custom    bool     `json:"custom"`
	Tokens    []string `json:"tokens"`
	Retained  []string `json:"retained"`
	Excluded  []string `json:"excluded"`
	Negatives []string `json:"negatives"`
	Dropped   []string `json:"dropped"`
}

func toIssueOutputs(issues []*calcerrors.Issue) []IssueOutput {
	if len(issues) == 0 {
		return nil
	}
	out := make([]IssueOutput, 0, len(issues))
	for _, issue := range issues {
		item := IssueOutput{
			Type:       string(issue.Type),
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		}
		if issue.Position != nil {
			column := issue.Position.Column
			item.Column = &column
		}
		item.Values = numberStrings(issue.Values)
		out = append(out, item)
	}
	return out
}

func toStagesOutput(report *calc.Report) *StagesOutput {
	if report == nil {
		return nil
	}
	delimiter := report.Delimiter()
	stages := &StagesOutput{
		Delimiter: delimiter.Literal,
		Custom:    delimiter.IsCustom,
		Tokens:    tokenStrings(report.Tokens()),
		Retained:  numberStrings(report.Classification.Retained),
		Excluded:  numberStrings(report.Classification.Excluded),
		Negatives: numberStrings(report.Classification.Negatives),
		Dropped:   tokenStrings(report.Classification.Dropped),
	}
	return stages
}

// String renders the stages for terminal output.
func (s *StagesOutput) String() string {
	var sb strings.Builder
	delimiter := fmt.Sprintf("%q", s.Delimiter)
	if s.Custom {
		delimiter += " (custom)"
	}
	fmt.Fprintf(&sb, "delimiter: %s\n", delimiter)
	fmt.Fprintf(&sb, "tokens:    %s\n", quoted(s.Tokens))
	fmt.Fprintf(&sb, "retained:  %s\n", list(s.Retained))
	fmt.Fprintf(&sb, "excluded:  %s\n", list(s.Excluded))
	fmt.Fprintf(&sb, "negatives: %s\n", list(s.Negatives))
	fmt.Fprintf(&sb, "dropped:   %s\n", quoted(s.Dropped))
	return sb.String()
}

func numberStrings(numbers []ast.ParsedNumber) []string {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, n.String())
	}
	return out
}

func tokenStrings(tokens []ast.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}

func quoted(values []string) string {
	q := make([]string, 0, len(values))
	for _, v := range values {
		q = append(q, fmt.Sprintf("%q", v))
	}
	return list(q)
}

func list(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, " ")
}
