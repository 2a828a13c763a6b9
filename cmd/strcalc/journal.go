package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/cli"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/journal/export"
	"mercator-hq/strcalc/pkg/journal/retention"
)

// exportPageSize is the page size used to read all matching records.
const exportPageSize = 1000

var journalFlags struct {
	since     string
	until     string
	outcome   string
	issueType string
	source    string
	limit     int
	offset    int
	format    string
	output    string

	days       int
	maxRecords int64
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the evaluation journal",
	Long: `Query, prune and export the evaluations recorded by strcalc serve and
strcalc eval --record.

The journal location comes from the journal.sqlite section of the config.

Subcommands:
  query   - List recorded evaluations
  prune   - Apply the retention policy now
  export  - Write records as JSON or CSV`,
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List recorded evaluations",
	Long: `List recorded evaluations, newest first.

Time bounds are RFC3339 timestamps and are inclusive.

Examples:
  # Last 20 rejected expressions
  strcalc journal query --outcome rejected --limit 20

  # Negative-number rejections since a point in time
  strcalc journal query --issue-type negative_numbers --since 2026-01-01T00:00:00Z

  # JSON output
  strcalc journal query --format json`,
	RunE: queryJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete records older than the retention period and the oldest records
beyond the record limit. Records are archived first when
journal.retention.archive_path is set.

Examples:
  # Use the configured retention
  strcalc journal prune

  # Keep one week and at most 10000 records
  strcalc journal prune --days 7 --max-records 10000`,
	RunE: pruneJournal,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records as JSON or CSV",
	Long: `Export every matching record, oldest first.

Examples:
  # Everything as JSON to stdout
  strcalc journal export

  # Rejections as CSV to a file
  strcalc journal export --outcome rejected --format csv --output rejected.csv`,
	RunE: exportJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalQueryCmd, journalPruneCmd, journalExportCmd)

	for _, cmd := range []*cobra.Command{journalQueryCmd, journalExportCmd} {
		cmd.Flags().StringVar(&journalFlags.since, "since", "", "only records at or after this time (RFC3339)")
		cmd.Flags().StringVar(&journalFlags.until, "until", "", "only records at or before this time (RFC3339)")
		cmd.Flags().StringVar(&journalFlags.outcome, "outcome", "", "filter by outcome (success, rejected)")
		cmd.Flags().StringVar(&journalFlags.issueType, "issue-type", "", "filter by issue type")
		cmd.Flags().StringVar(&journalFlags.source, "source", "", "filter by source (cli, http)")
	}

	journalQueryCmd.Flags().IntVar(&journalFlags.limit, "limit", journal.DefaultQueryLimit, "max results")
	journalQueryCmd.Flags().IntVar(&journalFlags.offset, "offset", 0, "pagination offset")
	journalQueryCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json")

	journalExportCmd.Flags().StringVar(&journalFlags.format, "format", export.FormatJSON, "export format: json, csv")
	journalExportCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "", "output file (default: stdout)")

	journalPruneCmd.Flags().IntVar(&journalFlags.days, "days", -1, "retention days (default from config, 0 keeps forever)")
	journalPruneCmd.Flags().Int64Var(&journalFlags.maxRecords, "max-records", -1, "max records (default from config, 0 is unlimited)")
}

// QueryOutput is the JSON output of journal query.
type QueryOutput struct {
	Records []*journal.Record `json:"records"`
	Total   int64             `json:"total"`
}

func queryJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(journalFlags.format)
	if err != nil {
		return err
	}
	query, err := buildJournalQuery()
	if err != nil {
		return err
	}
	if journalFlags.limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	if journalFlags.offset < 0 {
		return fmt.Errorf("--offset must not be negative")
	}
	query.Limit = journalFlags.limit
	query.Offset = journalFlags.offset

	store, err := openJournalForCommand(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("journal query", err)
	}
	total, err := store.Count(ctx, query)
	if err != nil {
		return cli.NewCommandError("journal query", err)
	}

	if format == cli.FormatJSON {
		if records == nil {
			records = []*journal.Record{}
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), QueryOutput{Records: records, Total: total})
	}

	writeRecordTable(cmd.OutOrStdout(), records)
	fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d record(s)\n", len(records), total)
	return nil
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}

	retentionCfg := &retention.Config{
		Days:        cfg.Journal.Retention.Days,
		MaxRecords:  cfg.Journal.Retention.MaxRecords,
		ArchivePath: cfg.Journal.Retention.ArchivePath,
	}
	if journalFlags.days >= 0 {
		retentionCfg.Days = journalFlags.days
	}
	if journalFlags.maxRecords >= 0 {
		retentionCfg.MaxRecords = journalFlags.maxRecords
	}

	store, err := openJournal(cfg, logger.Logger)
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, retentionCfg, nil, logger.Logger)
	deleted, err := pruner.Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s)\n", deleted)
	return nil
}

func exportJournal(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(strings.ToLower(journalFlags.format))
	if err != nil {
		return err
	}
	query, err := buildJournalQuery()
	if err != nil {
		return err
	}
	query.Ascending = true

	store, err := openJournalForCommand(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	records, err := readAll(ctx, store, query)
	if err != nil {
		return cli.NewCommandError("journal export", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if journalFlags.output != "" {
		f, err := os.Create(journalFlags.output)
		if err != nil {
			return cli.NewCommandError("journal export", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	if err := exporter.Export(ctx, records, w); err != nil {
		return cli.NewCommandError("journal export", err)
	}

	if journalFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d record(s) to %s\n", len(records), journalFlags.output)
	}
	return nil
}

// readAll pages through every record matching query.
func readAll(ctx context.Context, store journal.Storage, query *journal.Query) ([]*journal.Record, error) {
	var all []*journal.Record
	page := *query
	page.Limit = exportPageSize
	for {
		records, err := store.Query(ctx, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < exportPageSize {
			return all, nil
		}
		page.Offset += len(records)
	}
}

func buildJournalQuery() (*journal.Query, error) {
	query := &journal.Query{
		IssueType: journalFlags.issueType,
		Source:    journalFlags.source,
	}

	switch journalFlags.outcome {
	case "", journal.OutcomeSuccess, journal.OutcomeRejected:
		query.Outcome = journalFlags.outcome
	default:
		return nil, fmt.Errorf("invalid --outcome %q (want %s or %s)",
			journalFlags.outcome, journal.OutcomeSuccess, journal.OutcomeRejected)
	}

	if journalFlags.since != "" {
		t, err := time.Parse(time.RFC3339, journalFlags.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		query.StartTime = &t
	}
	if journalFlags.until != "" {
		t, err := time.Parse(time.RFC3339, journalFlags.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		query.EndTime = &t
	}
	if query.StartTime != nil && query.EndTime != nil && query.EndTime.Before(*query.StartTime) {
		return nil, fmt.Errorf("--until is before --since")
	}

	return query, nil
}

func openJournalForCommand(cmd *cobra.Command) (journal.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return nil, err
	}
	store, err := openJournal(cfg, logger.Logger)
	if err != nil {
		return nil, cli.NewCommandError(cmd.CommandPath(), err)
	}
	return store, nil
}

func writeRecordTable(w io.Writer, records []*journal.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED AT\tID\tSOURCE\tOUTCOME\tRESULT\tEXPRESSION")
	for _, r := range records {
		result := fmt.Sprintf("%d", r.Sum)
		if !r.Succeeded() {
			result = strings.Join(r.IssueTypes, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%q\n",
			r.RecordedAt.Local().Format(time.DateTime),
			r.ID,
			r.Source,
			r.Outcome(),
			result,
			r.Expression,
		)
	}
	tw.Flush()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
