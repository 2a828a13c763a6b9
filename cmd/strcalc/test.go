package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"mercator-hq/strcalc/pkg/calc"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
	"mercator-hq/strcalc/pkg/cli"
)

var testFlags struct {
	suiteFile string
	format    string
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run expected-result cases",
	Long: `Run a suite of expressions against their expected results.

Each case expects either a sum, or an error message and/or a list of issue
types. A suite may set max_value to override the configured threshold.

Suite Format (YAML):
  max_value: 1000          # optional
  cases:
    - name: "default delimiters"
      expression: "1,2\n3"
      expect:
        sum: 6
    - name: "negatives are listed"
      expression: "-1,2,-3"
      expect:
        error: "Negative number(s) not allowed: -1, -3"
    - name: "every problem is reported"
      expression: "//|\n1|2,-3"
      expect:
        issues: [negative_numbers, mixed_delimiter]

Examples:
  # Run a suite
  strcalc test --suite cases.yaml

  # JSON results for CI/CD
  strcalc test --suite cases.yaml --format json`,
	RunE: runTests,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testFlags.suiteFile, "suite", "s", "", "test suite file")
	testCmd.Flags().StringVar(&testFlags.format, "format", "text", "output format: text, json")

	// Mark required flags - panic if this fails as it's a programming error
	if err := testCmd.MarkFlagRequired("suite"); err != nil {
		panic(fmt.Sprintf("failed to mark suite flag as required: %v", err))
	}
}

// TestSuite represents a collection of test cases.
type TestSuite struct {
	MaxValue *int       `yaml:"max_value,omitempty"`
	Cases    []TestCase `yaml:"cases"`
}

// TestCase represents a single expression test case.
type TestCase struct {
	Name       string          `yaml:"name"`
	Expression string          `yaml:"expression"`
	Expect     TestExpectation `yaml:"expect"`
}

// TestExpectation is the expected result of a test case. Sum excludes the
// other fields.
type TestExpectation struct {
	Sum    *int     `yaml:"sum,omitempty"`
	Error  string   `yaml:"error,omitempty"`
	Issues []string `yaml:"issues,omitempty"`
}

// TestResult represents the result of executing a single test case.
type TestResult struct {
	Name         string        `json:"name"`
	Passed       bool          `json:"passed"`
	ActualSum    *int          `json:"actual_sum,omitempty"`
	ActualError  string        `json:"actual_error,omitempty"`
	ActualIssues []string      `json:"actual_issues,omitempty"`
	Mismatch     string        `json:"mismatch,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// TestReport is the JSON output of the test command.
type TestReport struct {
	Suite   string       `json:"suite"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Results []TestResult `json:"results"`
}

func runTests(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(testFlags.format)
	if err != nil {
		return err
	}

	suite, err := loadTestSuite(testFlags.suiteFile)
	if err != nil {
		return cli.NewCommandError("test", fmt.Errorf("failed to load test suite: %w", err))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	maxValue := cfg.Evaluator.MaxValue
	if suite.MaxValue != nil {
		maxValue = *suite.MaxValue
	}
	evaluator := calc.New(calc.WithMaxValue(maxValue))

	ctx := commandContext(cmd)

	report := TestReport{Suite: testFlags.suiteFile, Results: make([]TestResult, 0, len(suite.Cases))}
	for _, tc := range suite.Cases {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := runTestCase(evaluator, tc)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, result)
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		writeTestText(cmd.OutOrStdout(), report)
	}

	if report.Failed > 0 {
		return cli.Rejected(fmt.Errorf("%d of %d test cases failed", report.Failed, len(report.Results)))
	}
	return nil
}

func writeTestText(w io.Writer, report TestReport) {
	fmt.Fprintln(w, "Running expression tests...")
	fmt.Fprintln(w)

	for _, result := range report.Results {
		if result.Passed {
			fmt.Fprintf(w, "PASS %s (%.3fms)\n", result.Name, float64(result.Duration.Microseconds())/1000)
			continue
		}
		fmt.Fprintf(w, "FAIL %s\n", result.Name)
		fmt.Fprintf(w, "  %s\n", result.Mismatch)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d tests run, %d passed, %d failed\n", len(report.Results), report.Passed, report.Failed)
}

func loadTestSuite(path string) (*TestSuite, error) {
	// #nosec G304 - the suite path is supplied by the user on purpose.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(suite.Cases) == 0 {
		return nil, fmt.Errorf("no test cases found in %s", path)
	}

	var errs []error
	for i, tc := range suite.Cases {
		if tc.Name == "" {
			suite.Cases[i].Name = fmt.Sprintf("case %d", i+1)
		}
		expect := tc.Expect
		hasFailure := expect.Error != "" || len(expect.Issues) > 0
		switch {
		case expect.Sum == nil && !hasFailure:
			errs = append(errs, fmt.Errorf("%s: expect needs sum, error or issues", suite.Cases[i].Name))
		case expect.Sum != nil && hasFailure:
			errs = append(errs, fmt.Errorf("%s: expect cannot combine sum with error or issues", suite.Cases[i].Name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &suite, nil
}

func runTestCase(evaluator *calc.Evaluator, tc TestCase) TestResult {
	start := time.Now()
	sum, err := evaluator.Evaluate(tc.Expression)

	result := TestResult{
		Name:     tc.Name,
		Duration: time.Since(start),
	}

	if err != nil {
		result.ActualError = err.Error()
		for _, issue := range calcerrors.Issues(err) {
			result.ActualIssues = append(result.ActualIssues, string(issue.Type))
		}
	} else {
		result.ActualSum = &sum
	}

	result.Mismatch = mismatch(tc.Expect, result)
	result.Passed = result.Mismatch == ""
	return result
}

// mismatch describes how result differs from expect, or returns "".
func mismatch(expect TestExpectation, result TestResult) string {
	if expect.Sum != nil {
		if result.ActualSum == nil {
			return fmt.Sprintf("expected sum %d, got error %q", *expect.Sum, result.ActualError)
		}
		if *result.ActualSum != *expect.Sum {
			return fmt.Sprintf("expected sum %d, got %d", *expect.Sum, *result.ActualSum)
		}
		return ""
	}

	if result.ActualSum != nil {
		return fmt.Sprintf("expected an error, got sum %d", *result.ActualSum)
	}
	if expect.Error != "" && expect.Error != result.ActualError {
		return fmt.Sprintf("expected error %q, got %q", expect.Error, result.ActualError)
	}
	if len(expect.Issues) > 0 && !slices.Equal(expect.Issues, result.ActualIssues) {
		return fmt.Sprintf("expected issues %v, got %v", expect.Issues, result.ActualIssues)
	}
	return ""
}
