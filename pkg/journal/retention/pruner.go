package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/journal/export"
)

// Prune reasons, used as metric labels.
const (
	ReasonAge   = "age"
	ReasonCount = "count"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// Days is the number of days to keep records. 0 keeps them forever.
	Days int

	// MaxRecords is the maximum number of records to keep. 0 is unlimited.
	MaxRecords int64

	// PruneSchedule is a standard cron expression.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchivePath is a directory that receives a JSON copy of every record
	// before it is deleted. Empty disables archiving.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		Days:          30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention on journal records.
type Pruner struct {
	storage  journal.Storage
	config   *Config
	observer journal.Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage journal.Storage, config *Config, observer journal.Observer, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if observer == nil {
		observer = journal.NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		storage:  storage,
		config:   config,
		observer: observer,
		logger:   logger.With("component", "journal.retention"),
		now:      time.Now,
	}
}

// Prune deletes records older than the retention period and then the
// oldest records beyond MaxRecords. It returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, err
		}
		total += deleted
		p.observer.RecordJournalPrune(ReasonAge, deleted)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, err
		}
		total += deleted
		p.observer.RecordJournalPrune(ReasonCount, deleted)
	}

	if total == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("journal pruning completed",
			"total_deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)

	if p.config.ArchivePath != "" {
		// EndTime is inclusive, DeleteOlderThan is not.
		end := cutoff.Add(-time.Nanosecond)
		if err := p.archive(ctx, ReasonAge, &journal.Query{EndTime: &end}, 0); err != nil {
			return 0, journal.NewRetentionError(ReasonAge, err)
		}
	}

	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, journal.NewRetentionError(ReasonAge, err)
	}

	p.logger.Debug("pruned records by age",
		"deleted_count", deleted,
		"cutoff_time", cutoff,
	)
	return deleted, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, journal.NewRetentionError(ReasonCount, err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	if p.config.ArchivePath != "" {
		excess := count - p.config.MaxRecords
		if err := p.archive(ctx, ReasonCount, &journal.Query{}, excess); err != nil {
			return 0, journal.NewRetentionError(ReasonCount, err)
		}
	}

	deleted, err := p.storage.TrimTo(ctx, p.config.MaxRecords)
	if err != nil {
		return 0, journal.NewRetentionError(ReasonCount, err)
	}

	p.logger.Debug("pruned records by count",
		"deleted_count", deleted,
		"max_records", p.config.MaxRecords,
	)
	return deleted, nil
}

// archivePageSize is the number of records read per query while archiving.
const archivePageSize = 1000

// archive writes the oldest records matched by query, at most limit of
// them when limit is positive, to a timestamped JSON file.
func (p *Pruner) archive(ctx context.Context, reason string, query *journal.Query, limit int64) error {
	var records []*journal.Record
	page := *query
	page.Ascending = true
	for {
		page.Limit = archivePageSize
		if limit > 0 {
			page.Limit = int(min(limit-int64(len(records)), archivePageSize))
		}
		batch, err := p.storage.Query(ctx, &page)
		if err != nil {
			return fmt.Errorf("failed to query records for archiving: %w", err)
		}
		records = append(records, batch...)
		if len(batch) < page.Limit || (limit > 0 && int64(len(records)) >= limit) {
			break
		}
		page.Offset += len(batch)
	}
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("journal-%s-%s.json", reason, p.now().UTC().Format("2006-01-02-150405.000000000"))
	archiveFile := filepath.Join(p.config.ArchivePath, name)
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	if err := export.NewJSONExporter(true).Export(ctx, records, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	p.logger.Info("journal records archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)
	return nil
}
