package calc

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"

	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
)

// TestEvaluate_Sums tests expressions that evaluate successfully
func TestEvaluate_Sums(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want int
	}{
		{"empty string", "", 0},
		{"single number", "5", 5},
		{"two numbers", "1,2", 3},
		{"many numbers", "1,2,3,4", 10},
		{"repeated numbers", "5,5,5,5", 20},
		{"newline and comma", "1\n2,3", 6},
		{"comma then newline", "1,2\n3", 6},
		{"newlines only", "4\n5\n6", 15},
		{"custom semicolon", "//;\n1;3", 4},
		{"custom pipe", "//|\n1|2|3", 6},
		{"multi-character delimiter", "//sep\n2sep5", 7},
		{"custom comma", "//,\n1,2", 3},
		{"custom delimiter with empty body", "//;\n", 0},
		{"over threshold ignored", "//;\n1;2;1001", 3},
		{"threshold is inclusive", "1000,1", 1001},
		{"huge value ignored", "99999999999999999999999,1", 1},
		{"surrounding whitespace", " 1 , 2 ", 3},
		{"explicit plus sign", "+4,1", 5},
		{"zero", "0", 0},
		{"unparsable token dropped", "1,x", 1},
		{"unparsable custom token dropped", "//;\n1;x;2", 3},
		{"newline inside custom token dropped", "//;\n1\n2;3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}

// TestEvaluate_Errors tests the exact failure report for invalid expressions
func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		message string
		types   []calcerrors.IssueType
	}{
		{
			name:    "trailing comma",
			expr:    "1,2,",
			message: "Invalid input: separator at the end",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeTrailingSeparator},
		},
		{
			name:    "trailing newline",
			expr:    "1,2\n",
			message: "Invalid input: separator at the end",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeTrailingSeparator},
		},
		{
			name:    "trailing custom delimiter",
			expr:    "//;\n1;2;",
			message: "Invalid input: separator at the end",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeTrailingSeparator},
		},
		{
			name:    "empty custom delimiter",
			expr:    "//\n1",
			message: "Invalid input: separator at the end",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeTrailingSeparator},
		},
		{
			name:    "header without newline",
			expr:    "//;",
			message: "Invalid input: delimiter header must be followed by a newline",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMalformedHeader},
		},
		{
			name:    "bare marker",
			expr:    "//",
			message: "Invalid input: delimiter header must be followed by a newline",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMalformedHeader},
		},
		{
			name:    "single negative",
			expr:    "1,-2,3",
			message: "Negative number(s) not allowed: -2",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeNegativeNumbers},
		},
		{
			name:    "negatives keep order",
			expr:    "-5,2\n-1",
			message: "Negative number(s) not allowed: -5, -1",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeNegativeNumbers},
		},
		{
			name:    "negative with custom delimiter",
			expr:    "//|\n1|2|-3",
			message: "Negative number(s) not allowed: -3",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeNegativeNumbers},
		},
		{
			name:    "negative beyond int range",
			expr:    "-99999999999999999999999,1",
			message: "Negative number(s) not allowed: -99999999999999999999999",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeNegativeNumbers},
		},
		{
			name:    "mixed delimiter",
			expr:    "//;\n1;2,3",
			message: "';' expected but ',' found at position 3.",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMixedDelimiter},
		},
		{
			name:    "comma at end under custom delimiter",
			expr:    "//;\n1;2,",
			message: "';' expected but ',' found at position 3.",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMixedDelimiter},
		},
		{
			name:    "mixed multi-character delimiter",
			expr:    "//sep\n1sep2,3",
			message: "'sep' expected but ',' found at position 5.",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMixedDelimiter},
		},
		{
			name:    "position counts characters",
			expr:    "//;\né;1,2",
			message: "';' expected but ',' found at position 3.",
			types:   []calcerrors.IssueType{calcerrors.IssueTypeMixedDelimiter},
		},
		{
			name:    "negatives before mixed delimiter",
			expr:    "//|\n1|2,-3",
			message: "Negative number(s) not allowed: -3\n'|' expected but ',' found at position 3.",
			types: []calcerrors.IssueType{
				calcerrors.IssueTypeNegativeNumbers,
				calcerrors.IssueTypeMixedDelimiter,
			},
		},
		{
			name:    "order is fixed when comma comes first",
			expr:    "//|\n1,2|-3",
			message: "Negative number(s) not allowed: -3\n'|' expected but ',' found at position 1.",
			types: []calcerrors.IssueType{
				calcerrors.IssueTypeNegativeNumbers,
				calcerrors.IssueTypeMixedDelimiter,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := Evaluate(tt.expr)
			if err == nil {
				t.Fatalf("Evaluate(%q) = %d, want error", tt.expr, sum)
			}
			if sum != 0 {
				t.Errorf("Evaluate(%q) returned partial sum %d", tt.expr, sum)
			}
			if err.Error() != tt.message {
				t.Errorf("Evaluate(%q) error = %q, want %q", tt.expr, err.Error(), tt.message)
			}

			issues := calcerrors.Issues(err)
			if len(issues) != len(tt.types) {
				t.Fatalf("len(issues) = %d, want %d", len(issues), len(tt.types))
			}
			for i, issue := range issues {
				if issue.Type != tt.types[i] {
					t.Errorf("issue[%d].Type = %q, want %q", i, issue.Type, tt.types[i])
				}
				if !errors.Is(err, tt.types[i]) {
					t.Errorf("errors.Is(err, %q) = false", tt.types[i])
				}
			}
		})
	}
}

// TestEvaluate_NegativeMessageOmitsPositives tests that only negatives are listed
func TestEvaluate_NegativeMessageOmitsPositives(t *testing.T) {
	_, err := Evaluate("1,-2,3")
	if err == nil {
		t.Fatal("Expected error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "-2") {
		t.Errorf("message %q does not mention -2", msg)
	}
	if strings.Contains(msg, "1") || strings.Contains(msg, "3") {
		t.Errorf("message %q mentions a positive value", msg)
	}
}

// TestEvaluate_Sentinels tests errors.Is against the sentinel values
func TestEvaluate_Sentinels(t *testing.T) {
	_, err := Evaluate("//|\n1|2,-3")

	if !errors.Is(err, calcerrors.ErrNegativeNumbers) {
		t.Error("expected ErrNegativeNumbers")
	}
	if !errors.Is(err, calcerrors.ErrMixedDelimiter) {
		t.Error("expected ErrMixedDelimiter")
	}
	if errors.Is(err, calcerrors.ErrTrailingSeparator) {
		t.Error("unexpected ErrTrailingSeparator")
	}

	var list *calcerrors.IssueList
	if !errors.As(err, &list) {
		t.Fatal("expected *IssueList")
	}
	if list.Count() != 2 {
		t.Errorf("Count() = %d, want 2", list.Count())
	}
}

// TestEvaluator_WithMaxValue tests a custom magnitude threshold
func TestEvaluator_WithMaxValue(t *testing.T) {
	e := New(WithMaxValue(10))

	if e.MaxValue() != 10 {
		t.Errorf("MaxValue() = %d, want 10", e.MaxValue())
	}

	got, err := e.Evaluate("5,10,11")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 15 {
		t.Errorf("Evaluate() = %d, want 15", got)
	}
}

// TestEvaluator_MaxValueBounds tests the zero threshold and the upper limit
// that keeps sums from overflowing
func TestEvaluator_MaxValueBounds(t *testing.T) {
	tests := []struct {
		name     string
		maxValue int
		wantMax  int
		expr     string
		want     int
	}{
		{name: "zero keeps zeros", maxValue: 0, wantMax: 0, expr: "0,1,2", want: 0},
		{name: "at limit", maxValue: MaxValueLimit, wantMax: MaxValueLimit, expr: "2147483647,2147483648", want: 2147483647},
		{
			name:     "above limit lowered",
			maxValue: math.MaxInt,
			wantMax:  MaxValueLimit,
			expr:     "9223372036854775807,9223372036854775807,1",
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithMaxValue(tt.maxValue))
			if e.MaxValue() != tt.wantMax {
				t.Errorf("MaxValue() = %d, want %d", e.MaxValue(), tt.wantMax)
			}
			got, err := e.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}

// TestEvaluate_Idempotent tests that repeated evaluation yields the same result
func TestEvaluate_Idempotent(t *testing.T) {
	inputs := []string{"", "1,2", "//|\n1|2,-3", "1,2,", "//;\n1;2;1001"}

	for _, input := range inputs {
		sum1, err1 := Evaluate(input)
		sum2, err2 := Evaluate(input)

		if sum1 != sum2 {
			t.Errorf("Evaluate(%q) sums differ: %d vs %d", input, sum1, sum2)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Errorf("Evaluate(%q) errors differ: %v vs %v", input, err1, err2)
		}
	}
}

// TestEvaluate_MatchesArithmeticSum checks random well-formed default inputs
func TestEvaluate_MatchesArithmeticSum(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 200; i++ {
		count := rng.IntN(20) + 1
		parts := make([]string, count)
		want := 0
		for j := range parts {
			n := rng.IntN(1001)
			want += n
			parts[j] = strconv.Itoa(n)
		}

		var sb strings.Builder
		for j, p := range parts {
			if j > 0 {
				if rng.IntN(2) == 0 {
					sb.WriteString(",")
				} else {
					sb.WriteString("\n")
				}
			}
			sb.WriteString(p)
		}

		got, err := Evaluate(sb.String())
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", sb.String(), err)
		}
		if got != want {
			t.Fatalf("Evaluate(%q) = %d, want %d", sb.String(), got, want)
		}
	}
}

// TestEvaluator_Concurrent tests sharing one evaluator between goroutines
func TestEvaluator_Concurrent(t *testing.T) {
	e := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			expr := "//;\n" + strconv.Itoa(n) + ";1"
			got, err := e.Evaluate(expr)
			if err != nil {
				t.Errorf("Evaluate(%q) error = %v", expr, err)
				return
			}
			if got != n+1 {
				t.Errorf("Evaluate(%q) = %d, want %d", expr, got, n+1)
			}
		}(i)
	}

	wg.Wait()
}

// TestExplain tests the intermediate stages of an evaluation
func TestExplain(t *testing.T) {
	report, err := Explain("//;\n1;2;1001")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}

	if d := report.Delimiter(); d.Literal != ";" || !d.IsCustom {
		t.Errorf("Delimiter() = %+v, want custom ';'", d)
	}
	if len(report.Tokens()) != 3 {
		t.Errorf("len(Tokens()) = %d, want 3", len(report.Tokens()))
	}
	if len(report.Classification.Retained) != 2 {
		t.Errorf("len(Retained) = %d, want 2", len(report.Classification.Retained))
	}
	if len(report.Classification.Excluded) != 1 || report.Classification.Excluded[0].Value != 1001 {
		t.Errorf("Excluded = %+v, want [1001]", report.Classification.Excluded)
	}
	if report.Sum != 3 {
		t.Errorf("Sum = %d, want 3", report.Sum)
	}
}

// TestExplain_PartialOnError tests that a failed evaluation keeps completed stages
func TestExplain_PartialOnError(t *testing.T) {
	report, err := Explain("//|\n1|2,-3")
	if err == nil {
		t.Fatal("Expected error")
	}
	if report.Expression == nil {
		t.Fatal("Expected parsed expression in report")
	}
	if len(report.Classification.Negatives) != 1 {
		t.Errorf("len(Negatives) = %d, want 1", len(report.Classification.Negatives))
	}
	if report.Sum != 0 {
		t.Errorf("Sum = %d, want 0", report.Sum)
	}

	report, err = Explain("//;")
	if err == nil {
		t.Fatal("Expected error")
	}
	if report.Expression != nil {
		t.Error("Expected no expression for malformed header")
	}
	if report.Delimiter().Literal != "," {
		t.Errorf("Delimiter() = %q, want default", report.Delimiter().Literal)
	}
}

// TestReport_Body tests that issue offsets resolve against the body after
// the header, including when the trailing separator check fails
func TestReport_Body(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "parsed custom", expr: "//;\n1;2", want: "1;2"},
		{name: "trailing custom", expr: "//;\n1;22;", want: "1;22;"},
		{name: "trailing default", expr: "1,2,", want: "1,2,"},
		{name: "malformed header", expr: "//;", want: "//;"},
		{name: "empty", expr: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, _ := Explain(tt.expr)
			if got := report.Body(); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}

	report, err := Explain("//;\n1;22;")
	issues := calcerrors.Issues(err)
	if len(issues) != 1 || issues[0].Position == nil {
		t.Fatalf("Issues() = %v, want one positioned issue", issues)
	}
	if got := report.Body()[issues[0].Position.Offset:]; got != ";" {
		t.Errorf("body at issue offset = %q, want %q", got, ";")
	}
}

// BenchmarkEvaluate benchmarks evaluation of a mixed expression
func BenchmarkEvaluate(b *testing.B) {
	expr := "//;\n" + strings.Repeat("12;7;1001;", 100) + "3"
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(expr); err != nil {
			b.Fatal(err)
		}
	}
}
