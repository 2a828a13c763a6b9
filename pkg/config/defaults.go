package config

import (
	"math"
	"time"
)

// Default values for configuration fields.
const (
	// Evaluator defaults
	DefaultMaxValue           = 1000
	DefaultMaxExpressionBytes = 1048576 // 1MB

	// MaxValueLimit bounds evaluator.max_value so that sums fit in an int.
	MaxValueLimit = math.MaxInt32

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Rate limit and auth defaults
	DefaultRateLimitRequestsPerSecond = 50
	DefaultRateLimitIdleTTL           = 10 * time.Minute
	DefaultAuthHeader                 = "Authorization"

	// Journal defaults
	DefaultJournalEnabled         = true
	DefaultJournalSQLitePath      = "data/journal.db"
	DefaultJournalSQLiteDriver    = "sqlite"
	DefaultJournalSQLiteWALMode   = true
	DefaultJournalBusyTimeout     = 5 * time.Second
	DefaultJournalAsyncBuffer     = 1000
	DefaultJournalWriteTimeout    = 5 * time.Second
	DefaultJournalMaxExprLength   = 500
	DefaultJournalRetentionDays   = 30
	DefaultJournalPruneSchedule   = "0 3 * * *"
	DefaultJournalRetentionRecord = int64(0)

	// Telemetry defaults
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "strcalc"
	DefaultMetricsSubsystem   = "evaluator"
	DefaultTracingEnabled     = false
	DefaultTracingServiceName = "strcalc"
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 0.1
)

// DefaultDurationBuckets covers evaluations from 10µs to 100ms.
var DefaultDurationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1}

// DefaultTokenCountBuckets covers expressions from one to a thousand tokens.
var DefaultTokenCountBuckets = []float64{1, 2, 5, 10, 50, 100, 1000}

// NewDefaultConfig returns a configuration with every field set to its
// default. YAML files are decoded on top of it, so boolean fields that are
// absent from the file keep their defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Evaluator: EvaluatorConfig{
			MaxValue: DefaultMaxValue,
		},
		Journal: JournalConfig{
			Enabled: DefaultJournalEnabled,
			SQLite: SQLiteConfig{
				WALMode: DefaultJournalSQLiteWALMode,
			},
			Retention: RetentionConfig{
				Days:          DefaultJournalRetentionDays,
				MaxRecords:    DefaultJournalRetentionRecord,
				PruneSchedule: DefaultJournalPruneSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Boolean
// fields and fields where zero is meaningful (max value, retention days,
// max records, prune schedule) are left untouched; NewDefaultConfig sets
// those.
func ApplyDefaults(cfg *Config) {
	// Evaluator defaults
	if cfg.Evaluator.MaxExpressionBytes == 0 {
		cfg.Evaluator.MaxExpressionBytes = DefaultMaxExpressionBytes
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimit.Enabled && cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRateLimitRequestsPerSecond
	}
	if cfg.Server.RateLimit.IdleTTL == 0 {
		cfg.Server.RateLimit.IdleTTL = DefaultRateLimitIdleTTL
	}
	if cfg.Server.Auth.Header == "" {
		cfg.Server.Auth.Header = DefaultAuthHeader
	}

	// Journal defaults
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.Driver == "" {
		cfg.Journal.SQLite.Driver = DefaultJournalSQLiteDriver
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.Journal.Recorder.AsyncBuffer == 0 {
		cfg.Journal.Recorder.AsyncBuffer = DefaultJournalAsyncBuffer
	}
	if cfg.Journal.Recorder.WriteTimeout == 0 {
		cfg.Journal.Recorder.WriteTimeout = DefaultJournalWriteTimeout
	}
	if cfg.Journal.Recorder.MaxExpressionLength == 0 {
		cfg.Journal.Recorder.MaxExpressionLength = DefaultJournalMaxExprLength
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(cfg.Telemetry.Metrics.TokenCountBuckets) == 0 {
		cfg.Telemetry.Metrics.TokenCountBuckets = append([]float64(nil), DefaultTokenCountBuckets...)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}
