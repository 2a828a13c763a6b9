package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/strcalc/pkg/calc"
	calcerrors "mercator-hq/strcalc/pkg/calc/errors"
	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/telemetry/logging"
	"mercator-hq/strcalc/pkg/telemetry/metrics"
	"mercator-hq/strcalc/pkg/telemetry/tracing"
)

// ErrExpressionTooLarge is matched by TooLargeError.
var ErrExpressionTooLarge = errors.New("expression too large")

// TooLargeError reports an expression over the configured byte limit.
type TooLargeError struct {
	Size  int
	Limit int
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("expression is %d bytes, limit is %d", e.Size, e.Limit)
}

// Is matches ErrExpressionTooLarge.
func (e *TooLargeError) Is(target error) bool {
	return target == ErrExpressionTooLarge
}

// Recorder receives journal records. *recorder.Recorder implements it.
type Recorder interface {
	Record(ctx context.Context, record *journal.Record) error
}

// Options wires the service's collaborators. Every field is optional.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
	Recorder Recorder
}

// Request is one evaluation request.
type Request struct {
	Expression string
	Source     string // journal.SourceCLI or journal.SourceHTTP
	RequestID  string
}

// Result is the outcome of one evaluation. Report is nil when the
// expression was rejected for size.
type Result struct {
	ID       string
	Sum      int
	Report   *calc.Report
	Issues   []*calcerrors.Issue
	Duration time.Duration
}

// IssueTypes returns the type of every issue, in report order.
func (r *Result) IssueTypes() []string {
	types := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		types = append(types, string(issue.Type))
	}
	return types
}

// limits is swapped as a unit on reload.
type limits struct {
	evaluator          *calc.Evaluator
	maxExpressionBytes int
}

// Service evaluates expressions under the configured limits and reports
// each evaluation to logs, metrics, traces and the journal.
type Service struct {
	limits   atomic.Pointer[limits]
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	recorder Recorder
}

// New creates a service for the evaluator settings in cfg.
func New(cfg *config.EvaluatorConfig, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.Noop()
	}

	s := &Service{
		logger:   opts.Logger.With("component", "service"),
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		recorder: opts.Recorder,
	}
	s.limits.Store(newLimits(cfg))
	return s
}

func newLimits(cfg *config.EvaluatorConfig) *limits {
	return &limits{
		evaluator:          calc.New(calc.WithMaxValue(cfg.MaxValue)),
		maxExpressionBytes: cfg.MaxExpressionBytes,
	}
}

// Reload swaps in new evaluator limits. Evaluations already running keep
// the limits they started with.
func (s *Service) Reload(cfg *config.EvaluatorConfig) {
	old := s.limits.Swap(newLimits(cfg))
	s.logger.Info("evaluator limits reloaded",
		"max_value", cfg.MaxValue,
		"previous_max_value", old.evaluator.MaxValue(),
		"max_expression_bytes", cfg.MaxExpressionBytes,
	)
}

// MaxValue returns the current sum threshold.
func (s *Service) MaxValue() int {
	return s.limits.Load().evaluator.MaxValue()
}

// MaxExpressionBytes returns the current input size limit.
func (s *Service) MaxExpressionBytes() int {
	return s.limits.Load().maxExpressionBytes
}

// Evaluate runs one evaluation. The returned Result is never nil. The
// error is a *TooLargeError or the evaluator's issue error.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	l := s.limits.Load()
	result := &Result{ID: uuid.New().String()}

	ctx = logging.WithEvaluationID(ctx, result.ID)
	if req.RequestID != "" {
		ctx = logging.WithRequestID(ctx, req.RequestID)
	}
	logger := logging.FromContext(ctx, s.logger)

	ctx, span := s.tracer.Start(ctx, "strcalc.evaluate")
	defer span.End()

	start := time.Now()

	if l.maxExpressionBytes > 0 && len(req.Expression) > l.maxExpressionBytes {
		err := &TooLargeError{Size: len(req.Expression), Limit: l.maxExpressionBytes}
		result.Duration = time.Since(start)

		tracing.SetExpressionAttributes(span, result.ID, len(req.Expression), "", false)
		tracing.RecordIssues(span, err, nil)
		s.metrics.RecordEvaluation(metrics.Evaluation{
			Outcome:  metrics.OutcomeTooLarge,
			Duration: result.Duration,
		})
		logger.Warn("expression rejected",
			"size", err.Size,
			"limit", err.Limit,
		)
		return result, err
	}

	report, err := l.evaluator.Explain(req.Expression)
	result.Duration = time.Since(start)
	result.Report = report

	delimiter := report.Delimiter()
	tracing.SetExpressionAttributes(span, result.ID, len(req.Expression), delimiter.Literal, delimiter.IsCustom)

	ev := metrics.Evaluation{
		Duration: result.Duration,
		Tokens:   len(report.Tokens()),
		Excluded: len(report.Classification.Excluded),
		Dropped:  len(report.Classification.Dropped),
	}

	if err != nil {
		calcerrors.AddContextToIssues(err, report.Body())
		result.Issues = calcerrors.Issues(err)
		issueTypes := result.IssueTypes()

		ev.Outcome = metrics.OutcomeRejected
		ev.IssueTypes = issueTypes
		tracing.RecordIssues(span, err, issueTypes)
		logger.Info("expression rejected",
			"expression", req.Expression,
			"issue_types", issueTypes,
			"duration_us", result.Duration.Microseconds(),
		)
	} else {
		result.Sum = report.Sum

		ev.Outcome = metrics.OutcomeSuccess
		tracing.SetResultAttributes(span, ev.Tokens, report.Sum, ev.Excluded)
		logger.Debug("expression evaluated",
			"expression", req.Expression,
			"sum", report.Sum,
			"tokens", ev.Tokens,
			"excluded", ev.Excluded,
			"duration_us", result.Duration.Microseconds(),
		)
	}

	s.metrics.RecordEvaluation(ev)
	s.record(ctx, req, result, err)

	return result, err
}

func (s *Service) record(ctx context.Context, req Request, result *Result, evalErr error) {
	if s.recorder == nil {
		return
	}

	delimiter := result.Report.Delimiter()
	record := &journal.Record{
		ID:         result.ID,
		RequestID:  req.RequestID,
		Source:     req.Source,
		Expression: req.Expression,
		Delimiter:  delimiter.Literal,
		Custom:     delimiter.IsCustom,
		Sum:        result.Sum,
		Tokens:     len(result.Report.Tokens()),
		Excluded:   len(result.Report.Classification.Excluded),
		IssueTypes: result.IssueTypes(),
		Duration:   result.Duration,
	}
	if record.Source == "" {
		record.Source = journal.SourceCLI
	}
	if evalErr != nil {
		record.Error = evalErr.Error()
	}

	if err := s.recorder.Record(ctx, record); err != nil {
		logging.FromContext(ctx, s.logger).Debug("journal record not written", "error", err)
	}
}

// SelfTest evaluates known expressions with the live evaluator and reports
// the first mismatch. It backs the readiness check.
func (s *Service) SelfTest(ctx context.Context) error {
	evaluator := s.limits.Load().evaluator

	// Expected sums depend on the configured threshold.
	upTo := func(values ...int) int {
		sum := 0
		for _, v := range values {
			if v <= evaluator.MaxValue() {
				sum += v
			}
		}
		return sum
	}

	checks := []struct {
		expression string
		want       int
	}{
		{"", 0},
		{"1,2\n3", upTo(1, 2, 3)},
		{"//;\n1;2", upTo(1, 2)},
	}
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		got, err := evaluator.Evaluate(c.expression)
		if err != nil {
			return fmt.Errorf("self-test %q: %w", c.expression, err)
		}
		if got != c.want {
			return fmt.Errorf("self-test %q: got %d, want %d", c.expression, got, c.want)
		}
	}

	if _, err := evaluator.Evaluate("-1"); !errors.Is(err, calcerrors.IssueTypeNegativeNumbers) {
		return fmt.Errorf("self-test %q: negative number not rejected", "-1")
	}
	return nil
}
