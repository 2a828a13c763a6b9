package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"mercator-hq/strcalc/pkg/calc/ast"
)

// IssueType categorizes a validation issue found while evaluating an expression.
// IssueType implements error so that each type doubles as a sentinel for errors.Is.
type IssueType string

const (
	IssueTypeMalformedHeader   IssueType = "malformed_header"   // "//" marker without a newline
	IssueTypeTrailingSeparator IssueType = "trailing_separator" // Body ends with a separator
	IssueTypeNegativeNumbers   IssueType = "negative_numbers"   // One or more values below zero
	IssueTypeMixedDelimiter    IssueType = "mixed_delimiter"    // Comma used under a custom delimiter
)

// Sentinels for errors.Is. An evaluation error matches a sentinel when it
// contains an issue of that type.
var (
	ErrMalformedHeader   error = IssueTypeMalformedHeader
	ErrTrailingSeparator error = IssueTypeTrailingSeparator
	ErrNegativeNumbers   error = IssueTypeNegativeNumbers
	ErrMixedDelimiter    error = IssueTypeMixedDelimiter
)

// Error implements the error interface.
func (t IssueType) Error() string {
	return string(t)
}

// Fatal reports whether an issue of this type is reported on its own and
// stops evaluation before values are classified.
func (t IssueType) Fatal() bool {
	return t == IssueTypeMalformedHeader || t == IssueTypeTrailingSeparator
}

// Issue is a single validation problem. Error returns only the message, so a
// list of issues renders as the exact newline-joined report callers compare
// against. Detail returns the annotated form.
type Issue struct {
	Type       IssueType
	Message    string
	Delimiter  string             // Active delimiter literal, when relevant
	Position   *ast.Position      // Where the problem was found (optional)
	Values     []ast.ParsedNumber // Offending values for negative_numbers
	Context    string             // Rendered body excerpt with a caret (optional)
	Suggestion string             // Suggested fix (optional)
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return i.Message
}

// Is matches the IssueType sentinels.
func (i *Issue) Is(target error) bool {
	t, ok := target.(IssueType)
	return ok && t == i.Type
}

// Detail returns the message with its type, position, context and suggestion.
func (i *Issue) Detail() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", i.Type, i.Message))

	if i.Position != nil {
		sb.WriteString(fmt.Sprintf("  --> %s\n", i.Position.String()))
	}

	if i.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(i.Context)
		sb.WriteString("  |\n")
	}

	if i.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", i.Suggestion))
	}

	return sb.String()
}

// NewMalformedHeader reports a "//" marker that is not followed by a newline.
func NewMalformedHeader(header string) *Issue {
	return &Issue{
		Type:       IssueTypeMalformedHeader,
		Message:    "Invalid input: delimiter header must be followed by a newline",
		Delimiter:  header,
		Suggestion: fmt.Sprintf("Write the header as \"//%s\\n\" followed by the numbers", header),
	}
}

// NewTrailingSeparator reports a body that ends with the separator sep,
// which starts at pos.
func NewTrailingSeparator(sep string, pos ast.Position) *Issue {
	return &Issue{
		Type:       IssueTypeTrailingSeparator,
		Message:    "Invalid input: separator at the end",
		Delimiter:  sep,
		Position:   &pos,
		Suggestion: fmt.Sprintf("Remove the trailing %q", sep),
	}
}

// NewNegativeNumbers reports the negative values in the order they were found.
func NewNegativeNumbers(values []ast.ParsedNumber) *Issue {
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = v.String()
	}

	return &Issue{
		Type:       IssueTypeNegativeNumbers,
		Message:    "Negative number(s) not allowed: " + strings.Join(rendered, ", "),
		Values:     values,
		Suggestion: "Only zero and positive numbers can be added",
	}
}

// NewMixedDelimiter reports a comma found at pos while delimiter is active.
func NewMixedDelimiter(delimiter string, pos ast.Position) *Issue {
	return &Issue{
		Type:       IssueTypeMixedDelimiter,
		Message:    fmt.Sprintf("'%s' expected but ',' found at position %d.", delimiter, pos.Column),
		Delimiter:  delimiter,
		Position:   &pos,
		Suggestion: fmt.Sprintf("Replace ',' with '%s'", delimiter),
	}
}

// IssueList collects the issues found during one evaluation. Issues keep
// the order in which they were added.
type IssueList struct {
	Issues []*Issue
}

// NewIssueList creates a new empty issue list.
func NewIssueList() *IssueList {
	return &IssueList{
		Issues: make([]*Issue, 0),
	}
}

// Add appends an issue to the list. Nil issues are ignored.
func (il *IssueList) Add(issue *Issue) {
	if issue == nil {
		return
	}
	il.Issues = append(il.Issues, issue)
}

// HasIssues returns true if the list contains any issues.
func (il *IssueList) HasIssues() bool {
	return len(il.Issues) > 0
}

// Count returns the number of issues in the list.
func (il *IssueList) Count() int {
	return len(il.Issues)
}

// Error implements the error interface. Messages are joined by newlines.
func (il *IssueList) Error() string {
	messages := make([]string, len(il.Issues))
	for i, issue := range il.Issues {
		messages[i] = issue.Message
	}
	return strings.Join(messages, "\n")
}

// Unwrap exposes the individual issues to errors.Is and errors.As.
func (il *IssueList) Unwrap() []error {
	errs := make([]error, len(il.Issues))
	for i, issue := range il.Issues {
		errs[i] = issue
	}
	return errs
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (il *IssueList) ToError() error {
	if !il.HasIssues() {
		return nil
	}
	return il
}

// ByType returns all issues of the given type.
func (il *IssueList) ByType(issueType IssueType) []*Issue {
	var result []*Issue
	for _, issue := range il.Issues {
		if issue.Type == issueType {
			result = append(result, issue)
		}
	}
	return result
}

// HasIssueType returns true if the list contains an issue of the given type.
func (il *IssueList) HasIssueType(issueType IssueType) bool {
	for _, issue := range il.Issues {
		if issue.Type == issueType {
			return true
		}
	}
	return false
}

// Types returns the issue types in list order.
func (il *IssueList) Types() []IssueType {
	types := make([]IssueType, len(il.Issues))
	for i, issue := range il.Issues {
		types[i] = issue.Type
	}
	return types
}

// Issues flattens err into its issues. It returns nil when err does not
// wrap an *Issue or *IssueList.
func Issues(err error) []*Issue {
	var list *IssueList
	if stderrors.As(err, &list) {
		return list.Issues
	}
	var issue *Issue
	if stderrors.As(err, &issue) {
		return []*Issue{issue}
	}
	return nil
}
