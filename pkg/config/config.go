package config

import "time"

// Config is the root configuration structure for strcalc.
// It contains the evaluator limits and the settings for the HTTP server,
// the evaluation journal and telemetry.
type Config struct {
	// Evaluator contains the limits applied to every evaluation.
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Journal contains configuration for recording evaluations to SQLite
	// including retention.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EvaluatorConfig contains the limits applied to expression evaluation.
type EvaluatorConfig struct {
	// MaxValue is the largest value that counts toward a sum. Larger
	// values are ignored without an error. Zero keeps only zeros.
	// Range: 0 to MaxValueLimit
	// Default: 1000
	MaxValue int `yaml:"max_value"`

	// MaxExpressionBytes rejects expressions longer than this before
	// evaluation. It protects the server, not the evaluator.
	// Default: 1048576 (1MB)
	MaxExpressionBytes int `yaml:"max_expression_bytes"`
}

// ServerConfig contains configuration for the HTTP evaluation server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is how long to wait for in-flight requests during
	// graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RateLimit limits how fast each client may call POST /v1/evaluate.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Auth requires an API key on the /v1 routes.
	Auth AuthConfig `yaml:"auth"`
}

// RateLimitConfig contains per-client rate limits for evaluation requests.
// A zero limit is not enforced.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is applied.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained request rate per client.
	// Default: 50
	RequestsPerSecond int `yaml:"requests_per_second"`

	// Burst is the number of requests a client may send at once.
	// Default: 2 x requests_per_second
	Burst int `yaml:"burst"`

	// RequestsPerMinute caps requests per client over a minute.
	// Default: 0
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// BytesPerMinute caps expression bytes per client over a rolling minute.
	// Default: 0
	BytesPerMinute int64 `yaml:"bytes_per_minute"`

	// MaxConcurrent caps in-flight evaluations per client.
	// Default: 0
	MaxConcurrent int `yaml:"max_concurrent"`

	// IdleTTL is how long an idle client's limiter state is kept.
	// Default: 10m
	IdleTTL time.Duration `yaml:"idle_ttl"`

	// TrustForwardedFor keys clients by the first X-Forwarded-For address
	// instead of the connection address. Enable only behind a proxy.
	// Default: false
	TrustForwardedFor bool `yaml:"trust_forwarded_for"`
}

// AuthConfig contains API key authentication for the /v1 routes. The
// health, version and metrics routes are never authenticated.
type AuthConfig struct {
	// Enabled controls whether an API key is required.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Header is the request header carrying the key.
	// Default: "Authorization"
	Header string `yaml:"header"`

	// Scheme is a prefix stripped from the header value, e.g. "Bearer".
	// Empty means "Bearer" for the Authorization header and the bare key
	// for any other header.
	// Default: ""
	Scheme string `yaml:"scheme"`

	// Keys are the accepted API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig describes one accepted API key. Exactly one of Key and
// KeyEnv must be set.
type APIKeyConfig struct {
	// Name identifies the key holder in logs and the journal.
	Name string `yaml:"name"`

	// Key is the literal key.
	Key string `yaml:"key"`

	// KeyEnv names an environment variable holding the key.
	KeyEnv string `yaml:"key_env"`

	// Disabled keeps the key configured but rejects it.
	Disabled bool `yaml:"disabled"`
}

// JournalConfig contains configuration for the evaluation journal.
type JournalConfig struct {
	// Enabled controls whether evaluations are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains journal recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer. Records
	// are dropped when the buffer is full.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing one record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxExpressionLength truncates stored expressions. The SHA-256 of the
	// full expression is always kept.
	// Default: 500
	MaxExpressionLength int `yaml:"max_expression_length"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain journal records.
	// 0 means keep records forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// An empty schedule disables automatic pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchivePath is a directory where records are exported as JSON before
	// they are deleted. Empty disables archiving.
	// Default: ""
	ArchivePath string `yaml:"archive_path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "strcalc"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "evaluator"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for evaluation duration (seconds).
	// Default: [0.00001, 0.0001, 0.001, 0.01, 0.1]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// TokenCountBuckets defines histogram buckets for tokens per expression.
	// Default: [1, 2, 5, 10, 50, 100, 1000]
	TokenCountBuckets []float64 `yaml:"token_count_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether evaluation spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "strcalc"
	ServiceName string `yaml:"service_name"`

	// Exporter selects where spans are sent.
	// Options: "otlp" (gRPC), "none" (record only, useful with a custom
	// span processor)
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`
}
