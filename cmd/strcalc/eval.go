package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/cli"
	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/journal/recorder"
	"mercator-hq/strcalc/pkg/service"
)

var evalFlags struct {
	format  string
	explain bool
	record  bool
}

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate one expression",
	Long: `Evaluate one expression and print its sum.

The expression is read from the argument, or from stdin when no argument is
given. A single trailing newline on stdin is ignored so that piped input
behaves like an argument.

A rejected expression prints every problem found and exits with status 1.

Examples:
  # Default delimiters
  strcalc eval '1,2,3'

  # Custom delimiter from stdin
  printf '//;\n1;2' | strcalc eval

  # Show the intermediate stages
  strcalc eval --explain '1,2000,x,3'

  # JSON output, recorded to the journal
  strcalc eval --format json --record '1,-2'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
	evalCmd.Flags().BoolVar(&evalFlags.explain, "explain", false, "show delimiter, tokens and value classification")
	evalCmd.Flags().BoolVar(&evalFlags.record, "record", false, "record the evaluation to the journal")
}

// EvalOutput is the JSON form of an evaluation.
type EvalOutput struct {
	ID         string        `json:"id"`
	Expression string        `json:"expression"`
	Sum        *int          `json:"sum,omitempty"`
	Error      string        `json:"error,omitempty"`
	Issues     []IssueOutput `json:"issues,omitempty"`
	Stages     *StagesOutput `json:"stages,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(evalFlags.format)
	if err != nil {
		return err
	}

	expression, err := readExpression(cmd.InOrStdin(), args)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	svc, closeJournal, err := newCLIService(cfg, logger.Logger, evalFlags.record)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}
	result, evalErr := svc.Evaluate(ctx, service.Request{
		Expression: expression,
		Source:     journal.SourceCLI,
	})
	closeJournal()

	out := EvalOutput{
		ID:         result.ID,
		Expression: expression,
		Issues:     toIssueOutputs(result.Issues),
	}
	if evalErr != nil {
		out.Error = evalErr.Error()
	} else {
		sum := result.Sum
		out.Sum = &sum
	}
	if evalFlags.explain {
		out.Stages = toStagesOutput(result.Report)
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		writeEvalText(cmd.OutOrStdout(), cmd.ErrOrStderr(), out, result)
	}

	if evalErr != nil {
		return cli.Rejected(evalErr)
	}
	return nil
}

// newCLIService builds a service for one-shot commands. With record set
// and the journal enabled, evaluations are journaled; the returned func
// flushes the recorder and closes the journal.
func newCLIService(cfg *config.Config, logger *slog.Logger, record bool) (*service.Service, func(), error) {
	opts := service.Options{Logger: logger}
	closeJournal := func() {}

	if record && cfg.Journal.Enabled {
		store, err := openJournal(cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		rec := recorder.NewRecorder(store, &recorder.Config{
			AsyncBuffer:         cfg.Journal.Recorder.AsyncBuffer,
			WriteTimeout:        cfg.Journal.Recorder.WriteTimeout,
			MaxExpressionLength: cfg.Journal.Recorder.MaxExpressionLength,
		}, nil, logger)
		opts.Recorder = rec

		closeJournal = func() {
			// The recorder drains its buffer on Close, before the store goes away.
			if err := rec.Close(); err != nil {
				logger.Warn("failed to flush journal", "error", err)
			}
			if err := store.Close(); err != nil {
				logger.Warn("failed to close journal", "error", err)
			}
		}
	}

	return service.New(&cfg.Evaluator, opts), closeJournal, nil
}

func writeEvalText(stdout, stderr io.Writer, out EvalOutput, result *service.Result) {
	if out.Stages != nil {
		fmt.Fprint(stdout, out.Stages.String())
	}

	if out.Sum != nil {
		if out.Stages != nil {
			fmt.Fprintf(stdout, "sum:       %d\n", *out.Sum)
			return
		}
		fmt.Fprintln(stdout, *out.Sum)
		return
	}

	if !evalFlags.explain || len(result.Issues) == 0 {
		fmt.Fprintln(stderr, out.Error)
		return
	}
	for _, issue := range result.Issues {
		fmt.Fprint(stderr, issue.Detail())
	}
}

// readExpression returns the argument, or stdin without one trailing
// newline.
func readExpression(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if stdin == nil {
		return "", errors.New("no expression given")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	s := string(data)
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2], nil
	}
	return strings.TrimSuffix(s, "\n"), nil
}
