package config

import (
	"errors"
	"strings"
	"testing"
)

// TestValidate tests validation rules per field.
func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:      "negative max value",
			modify:    func(c *Config) { c.Evaluator.MaxValue = -1 },
			wantField: "evaluator.max_value",
		},
		{
			name:   "zero max value",
			modify: func(c *Config) { c.Evaluator.MaxValue = 0 },
		},
		{
			name:   "max value at limit",
			modify: func(c *Config) { c.Evaluator.MaxValue = MaxValueLimit },
		},
		{
			name:      "max value above limit",
			modify:    func(c *Config) { c.Evaluator.MaxValue = MaxValueLimit + 1 },
			wantField: "evaluator.max_value",
		},
		{
			name:      "zero max expression bytes",
			modify:    func(c *Config) { c.Evaluator.MaxExpressionBytes = 0 },
			wantField: "evaluator.max_expression_bytes",
		},
		{
			name:      "listen address without port",
			modify:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name: "negative rate limit ignored when disabled",
			modify: func(c *Config) {
				c.Server.RateLimit.MaxConcurrent = -1
			},
		},
		{
			name: "negative rate limit",
			modify: func(c *Config) {
				c.Server.RateLimit.Enabled = true
				c.Server.RateLimit.MaxConcurrent = -1
			},
			wantField: "server.rate_limit.max_concurrent",
		},
		{
			name:      "auth without keys",
			modify:    func(c *Config) { c.Server.Auth.Enabled = true },
			wantField: "server.auth.keys",
		},
		{
			name: "auth key with both sources",
			modify: func(c *Config) {
				c.Server.Auth.Enabled = true
				c.Server.Auth.Keys = []APIKeyConfig{{Name: "ci", Key: "k", KeyEnv: "CI_KEY"}}
			},
			wantField: "server.auth.keys[0]",
		},
		{
			name: "auth duplicate key name",
			modify: func(c *Config) {
				c.Server.Auth.Enabled = true
				c.Server.Auth.Keys = []APIKeyConfig{
					{Name: "ci", Key: "a"},
					{Name: "ci", Key: "b"},
				}
			},
			wantField: "server.auth.keys[1].name",
		},
		{
			name: "auth with valid keys",
			modify: func(c *Config) {
				c.Server.Auth.Enabled = true
				c.Server.Auth.Keys = []APIKeyConfig{
					{Name: "ci", Key: "a"},
					{Name: "ops", KeyEnv: "OPS_KEY"},
				}
			},
		},
		{
			name:      "unknown driver",
			modify:    func(c *Config) { c.Journal.SQLite.Driver = "mysql" },
			wantField: "journal.sqlite.driver",
		},
		{
			name: "unknown driver ignored when journal disabled",
			modify: func(c *Config) {
				c.Journal.Enabled = false
				c.Journal.SQLite.Driver = "mysql"
			},
		},
		{
			name:      "bad cron schedule",
			modify:    func(c *Config) { c.Journal.Retention.PruneSchedule = "every day" },
			wantField: "journal.retention.prune_schedule",
		},
		{
			name:   "empty cron schedule disables pruning",
			modify: func(c *Config) { c.Journal.Retention.PruneSchedule = "" },
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "metrics path without slash",
			modify:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name:      "unsorted buckets",
			modify:    func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} },
			wantField: "telemetry.metrics.duration_buckets",
		},
		{
			name: "tracing without service name",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.ServiceName = ""
			},
			wantField: "telemetry.tracing.service_name",
		},
		{
			name: "tracing with unknown exporter",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Exporter = "zipkin"
			},
			wantField: "telemetry.tracing.exporter",
		},
		{
			name: "tracing ratio out of range",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "ratio"
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name: "tracing settings ignored when disabled",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Exporter = "zipkin"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want field %s", verr.Errors, tt.wantField)
			}
		})
	}
}

// TestValidate_CollectsAllErrors tests that every invalid field is reported.
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Evaluator.MaxValue = -5
	cfg.Server.ListenAddress = ""
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("len(Errors) = %d, want 3: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(err.Error(), "with 3 errors") {
		t.Errorf("Error() = %q, want error count", err.Error())
	}
}

// TestValidationError_Error tests message formatting.
func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ValidationError
		want string
	}{
		{
			name: "empty",
			err:  ValidationError{},
			want: "configuration validation failed",
		},
		{
			name: "single",
			err:  ValidationError{Errors: []FieldError{{Field: "a.b", Message: "is required"}}},
			want: "configuration validation failed: a.b: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
