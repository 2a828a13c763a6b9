package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"mercator-hq/strcalc/pkg/calc/ast"
)

func TestIssueList_Error(t *testing.T) {
	list := NewIssueList()
	if list.HasIssues() {
		t.Error("new list has issues")
	}
	if list.ToError() != nil {
		t.Error("ToError() on empty list should be nil")
	}

	list.Add(NewNegativeNumbers([]ast.ParsedNumber{{Value: -1}, {Value: -20}}))
	list.Add(nil)
	list.Add(NewMixedDelimiter(";", ast.Position{Offset: 2, Column: 2}))

	if list.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", list.Count())
	}

	want := "Negative number(s) not allowed: -1, -20\n';' expected but ',' found at position 2."
	if list.Error() != want {
		t.Errorf("Error() = %q, want %q", list.Error(), want)
	}

	if !list.HasIssueType(IssueTypeMixedDelimiter) {
		t.Error("HasIssueType(mixed_delimiter) = false")
	}
	if len(list.ByType(IssueTypeNegativeNumbers)) != 1 {
		t.Error("ByType(negative_numbers) should return one issue")
	}
}

func TestIssue_Is(t *testing.T) {
	issue := NewTrailingSeparator(",", ast.Position{Offset: 3, Column: 3})
	wrapped := fmt.Errorf("evaluate: %w", issue)

	if !stderrors.Is(wrapped, ErrTrailingSeparator) {
		t.Error("wrapped issue should match ErrTrailingSeparator")
	}
	if stderrors.Is(wrapped, ErrNegativeNumbers) {
		t.Error("wrapped issue should not match ErrNegativeNumbers")
	}
	if got := Issues(wrapped); len(got) != 1 || got[0] != issue {
		t.Errorf("Issues() = %v", got)
	}
	if Issues(stderrors.New("other")) != nil {
		t.Error("Issues() of a foreign error should be nil")
	}
}

func TestIssueType_Fatal(t *testing.T) {
	if !IssueTypeMalformedHeader.Fatal() || !IssueTypeTrailingSeparator.Fatal() {
		t.Error("header and trailing issues should be fatal")
	}
	if IssueTypeNegativeNumbers.Fatal() || IssueTypeMixedDelimiter.Fatal() {
		t.Error("negative and mixed issues should not be fatal")
	}
}

func TestExtractContext(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		offset int
		lines  int
		want   string
	}{
		{
			name:   "single line",
			body:   "1|2,-3",
			offset: 3,
			lines:  2,
			want:   "-> 1 | 1|2,-3\n     |    ^\n",
		},
		{
			name:   "middle line",
			body:   "1\n2\n3",
			offset: 2,
			lines:  1,
			want:   "   1 | 1\n-> 2 | 2\n     | ^\n   3 | 3\n",
		},
		{
			name:   "out of range",
			body:   "1",
			offset: 5,
			lines:  1,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractContext(tt.body, tt.offset, tt.lines)
			if got != tt.want {
				t.Errorf("ExtractContext() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestIssue_Detail(t *testing.T) {
	issue := WithContext(NewMixedDelimiter("|", ast.Position{Offset: 3, Column: 3}), "1|2,-3", 2)
	detail := issue.Detail()

	for _, want := range []string{
		"[mixed_delimiter] '|' expected but ',' found at position 3.",
		"--> position 3",
		"-> 1 | 1|2,-3",
		"= suggestion: Replace ',' with '|'",
	} {
		if !strings.Contains(detail, want) {
			t.Errorf("Detail() missing %q:\n%s", want, detail)
		}
	}

	// Error stays the bare message
	if issue.Error() != "'|' expected but ',' found at position 3." {
		t.Errorf("Error() = %q", issue.Error())
	}
}

func TestAddContextToIssues_Negatives(t *testing.T) {
	list := NewIssueList()
	list.Add(NewNegativeNumbers([]ast.ParsedNumber{{Value: -2, Token: ast.Token{Text: "-2", Offset: 2}}}))

	AddContextToIssues(list, "1,-2")

	if !strings.Contains(list.Issues[0].Context, "-> 1 | 1,-2") {
		t.Errorf("Context = %q", list.Issues[0].Context)
	}
}
