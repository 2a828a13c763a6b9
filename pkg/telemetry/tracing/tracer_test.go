package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/strcalc/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordingConfig() *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		ServiceName: "strcalc-test",
		Exporter:    "none",
		Sampler:     SamplerAlways,
	}
}

// TestNew tests tracer construction.
func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "disabled", config: &config.TracingConfig{}, wantEnabled: false},
		{name: "enabled without exporter", config: recordingConfig(), wantEnabled: true},
		{
			name: "unknown exporter",
			config: &config.TracingConfig{
				Enabled: true, ServiceName: "x", Exporter: "zipkin", Sampler: SamplerAlways,
			},
			wantErr: true,
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled: true, ServiceName: "x", Exporter: "none", Sampler: "sometimes",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
		})
	}
}

// TestTracer_RecordsSpans tests spans and attributes end to end.
func TestTracer_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(recordingConfig(), WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)), WithServiceVersion("1.0.0"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "calc.evaluate")
	SetExpressionAttributes(span, "id-1", 5, ",", false)
	SetResultAttributes(span, 3, 6, 0)
	span.End()

	_, failed := tracer.Start(context.Background(), "calc.evaluate")
	RecordIssues(failed, errors.New("Negative number(s) not allowed: -1"), []string{"negative_numbers"})
	failed.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	if spans[0].Status.Code != codes.Ok {
		t.Errorf("first span status = %v, want Ok", spans[0].Status.Code)
	}
	if !hasAttr(spans[0].Attributes, attribute.Int(AttrSum, 6)) {
		t.Errorf("first span missing sum attribute: %v", spans[0].Attributes)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status.Code)
	}
	if !hasAttr(spans[1].Attributes, attribute.StringSlice(AttrIssueTypes, []string{"negative_numbers"})) {
		t.Errorf("second span missing issue types: %v", spans[1].Attributes)
	}
}

// TestTracer_NeverSampler tests that unsampled spans are not exported.
func TestTracer_NeverSampler(t *testing.T) {
	cfg := recordingConfig()
	cfg.Sampler = SamplerNever

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(cfg, WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "calc.evaluate")
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("got %d spans, want 0", n)
	}
}

// TestNoop tests the disabled tracer.
func TestNoop(t *testing.T) {
	tracer := Noop()
	if tracer.Enabled() {
		t.Error("Noop() tracer reported enabled")
	}
	_, span := tracer.Start(context.Background(), "x")
	if span.IsRecording() {
		t.Error("noop span is recording")
	}
	span.End()
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

// TestHTTPMiddleware tests trace context extraction.
func TestHTTPMiddleware(t *testing.T) {
	// Installs the global propagator.
	tracer, err := New(recordingConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-ID"); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Trace-ID"); got != "" {
		t.Errorf("X-Trace-ID without traceparent = %q, want empty", got)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.5, false},
		{SamplerRatio, 1.5, true},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			_, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			}
		})
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, a := range attrs {
		if a.Key == want.Key && a.Value.Emit() == want.Value.Emit() {
			return true
		}
	}
	return false
}
