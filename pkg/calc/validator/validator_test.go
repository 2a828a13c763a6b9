package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/strcalc/pkg/calc/ast"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

func custom(literal string) ast.DelimiterSpec {
	return ast.DelimiterSpec{Literal: literal, IsCustom: true}
}

func TestClassifyAt(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		i         int
		spec      ast.DelimiterSpec
		wantClass CharClass
		wantWidth int
	}{
		{"digit", "7", 0, custom(";"), CharDigit, 1},
		{"minus", "-", 0, custom(";"), CharMinus, 1},
		{"newline", "\n", 0, custom(";"), CharNewline, 1},
		{"comma", ",", 0, custom(";"), CharComma, 1},
		{"delimiter", "1;2", 1, custom(";"), CharDelimiter, 1},
		{"multi-character delimiter", "1sep2", 1, custom("sep"), CharDelimiter, 3},
		{"delimiter prefix only", "1se2", 1, custom("sep"), CharOther, 1},
		{"comma delimiter wins", ",", 0, custom(","), CharDelimiter, 1},
		{"letter", "x", 0, custom(";"), CharOther, 1},
		{"multi-byte letter", "é", 0, custom(";"), CharOther, 2},
		{"non-ascii digit", "٣", 0, custom(";"), CharDigit, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, width := ClassifyAt(tt.body, tt.i, tt.spec)
			if class != tt.wantClass {
				t.Errorf("class = %s, want %s", class, tt.wantClass)
			}
			if width != tt.wantWidth {
				t.Errorf("width = %d, want %d", width, tt.wantWidth)
			}
		})
	}
}

func TestCharClass_String(t *testing.T) {
	if CharComma.String() != "comma" {
		t.Errorf("CharComma.String() = %q", CharComma.String())
	}
	if CharClass(99).String() != "unknown" {
		t.Errorf("CharClass(99).String() = %q", CharClass(99).String())
	}
	if CharComma.Allowed() {
		t.Error("CharComma.Allowed() = true")
	}
	if !CharOther.Allowed() {
		t.Error("CharOther.Allowed() = false")
	}
}

func TestDetectMixedDelimiter(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		spec       ast.DelimiterSpec
		wantFound  bool
		wantColumn int
		wantOffset int
	}{
		{"default delimiter never reports", "1,2", ast.DefaultDelimiter(), false, 0, 0},
		{"clean custom body", "1;2;3", custom(";"), false, 0, 0},
		{"comma after number", "1|2,-3", custom("|"), true, 3, 3},
		{"first comma only", "1,2,3", custom(";"), true, 1, 1},
		{"after multi-character delimiter", "1sep2,3", custom("sep"), true, 5, 5},
		{"comma delimiter", "1,2", custom(","), false, 0, 0},
		{"other characters tolerated", "1;x;2", custom(";"), false, 0, 0},
		{"column counts characters", "é;1,2", custom(";"), true, 3, 4},
		{"multi-byte delimiter", "1€2,3", custom("€"), true, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := DetectMixedDelimiter(tt.body, tt.spec)
			if (issue != nil) != tt.wantFound {
				t.Fatalf("DetectMixedDelimiter(%q) = %v, wantFound %v", tt.body, issue, tt.wantFound)
			}
			if issue == nil {
				return
			}
			if issue.Type != calcerrors.IssueTypeMixedDelimiter {
				t.Errorf("Type = %q", issue.Type)
			}
			if issue.Position.Column != tt.wantColumn {
				t.Errorf("Column = %d, want %d", issue.Position.Column, tt.wantColumn)
			}
			if issue.Position.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", issue.Position.Offset, tt.wantOffset)
			}
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	tokens := []ast.Token{
		{Text: "1", Offset: 0},
		{Text: " ", Offset: 2},
		{Text: "-4", Offset: 4},
		{Text: "1001", Offset: 7},
		{Text: "abc", Offset: 12},
		{Text: "1000", Offset: 16},
		{Text: "-2", Offset: 21},
	}

	got := NewClassifier(DefaultMaxValue).Classify(tokens)

	values := func(ns []ast.ParsedNumber) []int {
		out := make([]int, len(ns))
		for i, n := range ns {
			out[i] = n.Value
		}
		return out
	}

	if diff := cmp.Diff([]int{1, -4, 1000, -2}, values(got.Retained)); diff != "" {
		t.Errorf("Retained mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1001}, values(got.Excluded)); diff != "" {
		t.Errorf("Excluded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{-4, -2}, values(got.Negatives)); diff != "" {
		t.Errorf("Negatives mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ast.Token{{Text: "abc", Offset: 12}}, got.Dropped); diff != "" {
		t.Errorf("Dropped mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text     string
		wantOK   bool
		wantStr  string
		overflow bool
	}{
		{"42", true, "42", false},
		{" 42 ", true, "42", false},
		{"+42", true, "42", false},
		{"-007", true, "-7", false},
		{"1_000", false, "", false},
		{"1.5", false, "", false},
		{"", false, "", false},
		{"123456789012345678901234567890", true, "123456789012345678901234567890", true},
		{"-123456789012345678901234567890", true, "-123456789012345678901234567890", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n, ok := ParseNumber(ast.Token{Text: tt.text})
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if n.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", n.String(), tt.wantStr)
			}
			if n.Overflow != tt.overflow {
				t.Errorf("Overflow = %v, want %v", n.Overflow, tt.overflow)
			}
		})
	}
}

func TestAggregate_FixedOrder(t *testing.T) {
	result := Classification{
		Negatives: []ast.ParsedNumber{{Value: -3, Token: ast.Token{Text: "-3", Offset: 4}}},
	}
	mixed := calcerrors.NewMixedDelimiter("|", ast.Position{Offset: 3, Column: 3})

	err := Aggregate(result, mixed)
	if err == nil {
		t.Fatal("Expected error")
	}

	want := "Negative number(s) not allowed: -3\n'|' expected but ',' found at position 3."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	list := err.(*calcerrors.IssueList)
	wantTypes := []calcerrors.IssueType{calcerrors.IssueTypeNegativeNumbers, calcerrors.IssueTypeMixedDelimiter}
	if diff := cmp.Diff(wantTypes, list.Types()); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_NoIssues(t *testing.T) {
	if err := Aggregate(Classification{Sum: 3}, nil); err != nil {
		t.Errorf("Aggregate() = %v, want nil", err)
	}
}

func TestValidator_Validate(t *testing.T) {
	expr := &ast.Expression{
		Source:    "//;\n1;2;1001",
		Body:      "1;2;1001",
		Delimiter: custom(";"),
		Tokens:    []ast.Token{{Text: "1", Offset: 0}, {Text: "2", Offset: 2}, {Text: "1001", Offset: 4}},
	}

	result, err := NewValidator(DefaultMaxValue).Validate(expr)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.Sum != 3 {
		t.Errorf("Sum = %d, want 3", result.Sum)
	}
}
