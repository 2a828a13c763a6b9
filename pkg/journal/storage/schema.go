package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the journal tables. recorded_at holds Unix nanoseconds so
// both drivers compare it the same way. seq orders records that share a
// timestamp.
const Schema = `
CREATE TABLE IF NOT EXISTS journal (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    request_id TEXT,
    source TEXT NOT NULL,

    -- Input
    expression TEXT NOT NULL,
    expression_hash TEXT NOT NULL,
    expression_size INTEGER NOT NULL,
    truncated BOOLEAN NOT NULL,
    delimiter TEXT NOT NULL,
    custom BOOLEAN NOT NULL,

    -- Result
    result INTEGER NOT NULL,
    tokens INTEGER NOT NULL,
    excluded INTEGER NOT NULL,
    error TEXT,
    issue_types TEXT,

    -- Timing
    duration_us INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_recorded_at ON journal(recorded_at);
CREATE INDEX IF NOT EXISTS idx_journal_error ON journal(error);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO journal (
    id, request_id, source,
    expression, expression_hash, expression_size, truncated, delimiter, custom,
    result, tokens, excluded, error, issue_types,
    duration_us, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
    id, request_id, source,
    expression, expression_hash, expression_size, truncated, delimiter, custom,
    result, tokens, excluded, error, issue_types,
    duration_us, recorded_at
`
