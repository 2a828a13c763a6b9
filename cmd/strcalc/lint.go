package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/cli"
	"mercator-hq/strcalc/pkg/service"
)

var lintFlags struct {
	file     string
	format   string
	progress bool
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check a file of expressions",
	Long: `Evaluate every expression in a file and report the ones that are rejected.

The file holds one expression per line. Lines are decoded with Go string
literal rules, so "\n" stands for a newline and "\\" for a backslash. Blank
lines and lines starting with "#" are skipped.

Each problem is reported with its position, an excerpt of the expression with
a caret, and a suggested fix. The command exits with status 1 when any
expression is rejected.

Examples:
  # Lint a file
  strcalc lint --file expressions.txt

  # JSON output for CI/CD
  strcalc lint --file expressions.txt --format json

  # Show progress on stderr for large files
  strcalc lint --file big.txt --progress`,
	RunE: lintExpressions,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "file with one expression per line (\"-\" for stdin)")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
	lintCmd.Flags().BoolVar(&lintFlags.progress, "progress", false, "report progress on stderr")
}

// LintResult is the lint outcome for one line.
type LintResult struct {
	Line       int           `json:"line"`
	Expression string        `json:"expression"`
	Valid      bool          `json:"valid"`
	Sum        *int          `json:"sum,omitempty"`
	Error      string        `json:"error,omitempty"`
	Issues     []IssueOutput `json:"issues,omitempty"`

	details []string
	kind    string // Rejection kind when there are no issues
}

// issueTypes names what rejected the line, or nil when it is valid.
func (r LintResult) issueTypes() []string {
	if r.Valid {
		return nil
	}
	if len(r.Issues) == 0 {
		return []string{r.kind}
	}
	types := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		types[i] = issue.Type
	}
	return types
}

// LintReport is the JSON output of the lint command.
type LintReport struct {
	File     string       `json:"file"`
	Total    int          `json:"total"`
	Rejected int          `json:"rejected"`
	Results  []LintResult `json:"results"`
}

type lintLine struct {
	number int
	raw    string
}

func lintExpressions(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" {
		return fmt.Errorf("--file must be specified")
	}
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	lines, err := readLintFile(cmd.InOrStdin(), lintFlags.file)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	svc := service.New(&cfg.Evaluator, service.Options{Logger: logger.Logger})

	ctx := commandContext(cmd)

	var progress *cli.LintProgress
	if lintFlags.progress {
		progress = cli.NewLintProgress(cmd.ErrOrStderr(), len(lines))
	}

	report := LintReport{File: lintFlags.file, Results: make([]LintResult, 0, len(lines))}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			if progress != nil {
				progress.Abort(err)
			}
			return err
		}

		result := lintLineResult(ctx, svc, line)
		if !result.Valid {
			report.Rejected++
		}
		report.Results = append(report.Results, result)

		if progress != nil {
			progress.Observe(result.issueTypes())
		}
	}
	report.Total = len(report.Results)
	if progress != nil {
		progress.Finish()
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		writeLintText(cmd.OutOrStdout(), report)
	}

	if report.Rejected > 0 {
		return cli.Rejected(fmt.Errorf("%d of %d expressions rejected", report.Rejected, report.Total))
	}
	return nil
}

func lintLineResult(ctx context.Context, svc *service.Service, line lintLine) LintResult {
	result := LintResult{Line: line.number, Expression: line.raw}

	expression, err := decodeLine(line.raw)
	if err != nil {
		result.Error = err.Error()
		result.kind = "invalid_escape"
		result.details = []string{fmt.Sprintf("[%s] %s\n", result.kind, err)}
		return result
	}

	res, err := svc.Evaluate(ctx, service.Request{Expression: expression})
	if err != nil {
		result.Error = err.Error()
		result.Issues = toIssueOutputs(res.Issues)
		for _, issue := range res.Issues {
			result.details = append(result.details, issue.Detail())
		}
		if len(result.details) == 0 {
			result.kind = "too_large"
			result.details = []string{err.Error() + "\n"}
		}
		return result
	}

	sum := res.Sum
	result.Valid = true
	result.Sum = &sum
	return result
}

func writeLintText(w io.Writer, report LintReport) {
	for _, result := range report.Results {
		if result.Valid {
			fmt.Fprintf(w, "ok    line %d: %s = %d\n", result.Line, result.Expression, *result.Sum)
			continue
		}
		fmt.Fprintf(w, "FAIL  line %d: %s\n", result.Line, result.Expression)
		for _, detail := range result.details {
			for _, l := range strings.SplitAfter(strings.TrimSuffix(detail, "\n"), "\n") {
				fmt.Fprintf(w, "      %s", l)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d expression(s), %d rejected\n", report.Total, report.Rejected)
}

// decodeLine interprets escape sequences with Go string literal rules.
// Double quotes may appear bare or escaped.
func decodeLine(raw string) (string, error) {
	if !strings.Contains(raw, `\`) {
		return raw, nil
	}

	buf := make([]byte, 0, len(raw))
	for s := raw; len(s) > 0; {
		if s[0] == '"' {
			buf = append(buf, '"')
			s = s[1:]
			continue
		}
		c, multibyte, tail, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			return "", fmt.Errorf("invalid escape sequence in %q", raw)
		}
		if c < utf8.RuneSelf || !multibyte {
			buf = append(buf, byte(c))
		} else {
			buf = utf8.AppendRune(buf, c)
		}
		s = tail
	}
	return string(buf), nil
}

func readLintFile(stdin io.Reader, path string) ([]lintLine, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open expressions file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []lintLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		lines = append(lines, lintLine{number: number, raw: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expressions file: %w", err)
	}
	return lines, nil
}
