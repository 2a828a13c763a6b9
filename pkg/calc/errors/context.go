package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ExtractContext renders the lines of body surrounding the byte offset and
// places a caret under the offending character. Bodies may span several
// lines when newlines are used as separators.
func ExtractContext(body string, offset int, contextLines int) string {
	if offset < 0 || offset > len(body) {
		return ""
	}

	lines := strings.Split(body, "\n")

	// Locate the line and column holding offset
	errorLine, column, consumed := 0, 0, 0
	for i, line := range lines {
		if offset <= consumed+len(line) {
			errorLine = i
			column = utf8.RuneCountInString(line[:offset-consumed])
			break
		}
		consumed += len(line) + 1
	}

	startLine := errorLine - contextLines
	endLine := errorLine + contextLines
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine {
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", column)))
		}
	}

	return sb.String()
}

// WithContext attaches a rendered excerpt of body to the issue. Issues with
// a position point at that position; negative_numbers issues point at the
// first negative value.
func WithContext(issue *Issue, body string, contextLines int) *Issue {
	switch {
	case issue.Position != nil:
		issue.Context = ExtractContext(body, issue.Position.Offset, contextLines)
	case len(issue.Values) > 0:
		issue.Context = ExtractContext(body, issue.Values[0].Token.Offset, contextLines)
	}
	return issue
}

// AddContextToIssues enriches every issue in err with context from body.
// Two lines before and after are shown.
func AddContextToIssues(err error, body string) {
	for _, issue := range Issues(err) {
		WithContext(issue, body, 2)
	}
}
