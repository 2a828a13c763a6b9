package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the cgo driver as "sqlite3".
	_ "github.com/mattn/go-sqlite3"
	// Registers the pure Go driver as "sqlite".
	_ "modernc.org/sqlite"

	"mercator-hq/strcalc/pkg/journal"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" opens a private in-memory
	// database.
	Path string

	// Driver is DriverModernc (default) or DriverMattn.
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/journal.db",
		Driver:       DriverModernc,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements journal.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies pragmas and creates the
// schema.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal.storage.sqlite", "driver", config.Driver)

	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, journal.NewStorageError(config.Driver, "open",
			fmt.Errorf("unsupported driver %q", config.Driver))
	}

	if config.Path != ":memory:" {
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, journal.NewStorageError(config.Driver, "mkdir", err)
			}
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, journal.NewStorageError(config.Driver, "open", err)
	}

	// Each connection to ":memory:" would see its own empty database.
	if config.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite journal initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return s.err("enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return s.err("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return s.err("create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return s.err("insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return s.err("get_schema_version", err)
	}
	if version != SchemaVersion {
		return s.err("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *journal.Record) error {
	var issueTypes any
	if len(record.IssueTypes) > 0 {
		data, err := json.Marshal(record.IssueTypes)
		if err != nil {
			return s.err("store", err)
		}
		issueTypes = string(data)
	}

	_, err := s.db.ExecContext(ctx, insertRecord,
		record.ID, nullString(record.RequestID), record.Source,
		record.Expression, record.ExpressionHash, record.ExpressionSize, record.Truncated,
		record.Delimiter, record.Custom,
		record.Sum, record.Tokens, record.Excluded, nullString(record.Error), issueTypes,
		record.Duration.Microseconds(), record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return s.err("store", err)
	}
	return nil
}

// Query returns records matching the filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	if query == nil {
		query = &journal.Query{}
	}

	where, args := buildWhereClause(query)

	order := "DESC"
	if query.Ascending {
		order = "ASC"
	}
	limit := query.Limit
	if limit <= 0 {
		limit = journal.DefaultQueryLimit
	}

	stmt := "SELECT " + selectColumns + " FROM journal" + where +
		fmt.Sprintf(" ORDER BY recorded_at %s, seq %s LIMIT %d", order, order, limit)
	if query.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.err("query", err)
	}
	defer rows.Close()

	records := []*journal.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, s.err("scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.err("query", err)
	}

	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	if query == nil {
		query = &journal.Query{}
	}

	where, args := buildWhereClause(query)

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal"+where, args...).Scan(&count); err != nil {
		return 0, s.err("count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal WHERE recorded_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, s.err("delete", err)
	}
	return rowsAffected(s, result)
}

// TrimTo removes the oldest records until at most max remain.
func (s *SQLiteStorage) TrimTo(ctx context.Context, max int64) (int64, error) {
	if max < 0 {
		max = 0
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM journal WHERE seq NOT IN (
			SELECT seq FROM journal ORDER BY recorded_at DESC, seq DESC LIMIT ?
		)`, max)
	if err != nil {
		return 0, s.err("trim", err)
	}
	return rowsAffected(s, result)
}

// Ping verifies the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.err("ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return s.err("close", err)
	}
	s.logger.Debug("SQLite journal closed")
	return nil
}

func (s *SQLiteStorage) err(op string, cause error) error {
	return journal.NewStorageError(s.config.Driver, op, cause)
}

func buildWhereClause(query *journal.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}
	switch query.Outcome {
	case journal.OutcomeSuccess:
		conditions = append(conditions, "error IS NULL")
	case journal.OutcomeRejected:
		conditions = append(conditions, "error IS NOT NULL")
	}
	if query.IssueType != "" {
		conditions = append(conditions, "issue_types LIKE ?")
		args = append(args, `%"`+query.IssueType+`"%`)
	}
	if query.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, query.Source)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanRecord(rows *sql.Rows) (*journal.Record, error) {
	var (
		record     journal.Record
		requestID  sql.NullString
		errMsg     sql.NullString
		issueTypes sql.NullString
		durationUS int64
		recordedAt int64
	)

	err := rows.Scan(
		&record.ID, &requestID, &record.Source,
		&record.Expression, &record.ExpressionHash, &record.ExpressionSize, &record.Truncated,
		&record.Delimiter, &record.Custom,
		&record.Sum, &record.Tokens, &record.Excluded, &errMsg, &issueTypes,
		&durationUS, &recordedAt,
	)
	if err != nil {
		return nil, err
	}

	record.RequestID = requestID.String
	record.Error = errMsg.String
	record.Duration = time.Duration(durationUS) * time.Microsecond
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	if issueTypes.Valid && issueTypes.String != "" {
		if err := json.Unmarshal([]byte(issueTypes.String), &record.IssueTypes); err != nil {
			return nil, fmt.Errorf("decode issue types: %w", err)
		}
	}

	return &record, nil
}

func rowsAffected(s *SQLiteStorage, result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, s.err("rows_affected", err)
	}
	return n, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
