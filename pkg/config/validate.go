package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEvaluator(&cfg.Evaluator)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEvaluator(cfg *EvaluatorConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxValue < 0 || cfg.MaxValue > MaxValueLimit {
		errs = append(errs, FieldError{
			Field:   "evaluator.max_value",
			Message: fmt.Sprintf("must be between 0 and %d", MaxValueLimit),
		})
	}
	if cfg.MaxExpressionBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "evaluator.max_expression_bytes",
			Message: "must be positive",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be in host:port format: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must be non-negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must be non-negative"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "must be non-negative"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must be non-negative"})
	}

	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)

	return errs
}

func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	ints := []struct {
		field string
		value int64
	}{
		{"requests_per_second", int64(cfg.RequestsPerSecond)},
		{"burst", int64(cfg.Burst)},
		{"requests_per_minute", int64(cfg.RequestsPerMinute)},
		{"bytes_per_minute", cfg.BytesPerMinute},
		{"max_concurrent", int64(cfg.MaxConcurrent)},
	}
	for _, f := range ints {
		if f.value < 0 {
			errs = append(errs, FieldError{
				Field:   "server.rate_limit." + f.field,
				Message: "must be non-negative",
			})
		}
	}
	if cfg.IdleTTL < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.idle_ttl", Message: "must be non-negative"})
	}

	return errs
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if len(cfg.Keys) == 0 {
		errs = append(errs, FieldError{
			Field:   "server.auth.keys",
			Message: "at least one key is required when auth is enabled",
		})
	}

	seen := make(map[string]bool, len(cfg.Keys))
	for i, key := range cfg.Keys {
		field := fmt.Sprintf("server.auth.keys[%d]", i)
		if key.Name == "" {
			errs = append(errs, FieldError{Field: field + ".name", Message: "is required"})
		} else if seen[key.Name] {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate key name %q", key.Name),
			})
		}
		seen[key.Name] = true

		if (key.Key == "") == (key.KeyEnv == "") {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "exactly one of key and key_env must be set",
			})
		}
	}

	return errs
}

func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "journal.sqlite.path",
			Message: "is required when the journal is enabled",
		})
	}

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.SQLite.Driver] {
		errs = append(errs, FieldError{
			Field:   "journal.sqlite.driver",
			Message: fmt.Sprintf("must be one of: sqlite, sqlite3 (got %q)", cfg.SQLite.Driver),
		})
	}

	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "journal.sqlite.busy_timeout", Message: "must be non-negative"})
	}
	if cfg.Recorder.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{Field: "journal.recorder.async_buffer", Message: "must be positive"})
	}
	if cfg.Recorder.WriteTimeout <= 0 {
		errs = append(errs, FieldError{Field: "journal.recorder.write_timeout", Message: "must be positive"})
	}
	if cfg.Recorder.MaxExpressionLength < 0 {
		errs = append(errs, FieldError{Field: "journal.recorder.max_expression_length", Message: "must be non-negative"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "journal.retention.days", Message: "must be non-negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "journal.retention.max_records", Message: "must be non-negative"})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "journal.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of: json, text, console (got %q)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "must start with '/'",
			})
		}
		if !ascending(cfg.Metrics.DurationBuckets) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "must be sorted in increasing order",
			})
		}
		if !ascending(cfg.Metrics.TokenCountBuckets) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.token_count_buckets",
				Message: "must be sorted in increasing order",
			})
		}
	}

	if cfg.Tracing.Enabled {
		errs = append(errs, validateTracing(&cfg.Tracing)...)
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if cfg.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.service_name",
			Message: "is required when tracing is enabled",
		})
	}

	switch cfg.Exporter {
	case "otlp":
		if cfg.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "is required for the otlp exporter",
			})
		}
	case "none":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.exporter",
			Message: fmt.Sprintf("must be one of: otlp, none (got %q)", cfg.Exporter),
		})
	}

	switch cfg.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "must be between 0.0 and 1.0",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("must be one of: always, never, ratio (got %q)", cfg.Sampler),
		})
	}

	return errs
}

func ascending(buckets []float64) bool {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return false
		}
	}
	return true
}
