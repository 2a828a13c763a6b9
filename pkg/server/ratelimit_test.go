package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/security/auth"
	"mercator-hq/strcalc/pkg/telemetry/logging"
)

func withRateLimit(rl config.RateLimitConfig) envOption {
	return func(cfg *config.ServerConfig, _ *Deps) {
		rl.Enabled = true
		cfg.RateLimit = rl
	}
}

func withAuth(t *testing.T, keys ...config.APIKeyConfig) envOption {
	t.Helper()
	return func(cfg *config.ServerConfig, deps *Deps) {
		cfg.Auth = config.AuthConfig{Enabled: true, Keys: keys}
		validator, err := auth.NewValidator(keys, nil)
		if err != nil {
			t.Fatalf("NewValidator() error = %v", err)
		}
		deps.Auth = auth.NewMiddleware(&cfg.Auth, validator, deps.Metrics, logging.Discard())
	}
}

func (e *testEnv) evaluateFrom(remoteAddr, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/evaluate", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RequestsPerSecond(t *testing.T) {
	env := newTestEnv(t, withRateLimit(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	for i := 0; i < 2; i++ {
		rec := env.evaluateFrom("10.0.0.1:5000", `{"expression": "1,2"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("X-RateLimit-Limit = %q, want 2", rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := env.evaluateFrom("10.0.0.1:5001", `{"expression": "1,2"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(rec.Body.String(), "requests_per_second") {
		t.Errorf("body = %s, want reason", rec.Body.String())
	}

	// Another client has its own budget.
	if rec := env.evaluateFrom("10.0.0.2:5000", `{"expression": "1"}`); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}

	n, err := testutil.GatherAndCount(env.registry, "strcalc_http_rate_limited_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("rate limited series = %d, want 1", n)
	}

	// A rejected request is not journaled.
	env.recorder.Close()
	count, err := env.store.Count(context.Background(), &journal.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("journaled %d records, want 3", count)
	}
}

func TestRateLimit_BytesPerMinute(t *testing.T) {
	env := newTestEnv(t, withRateLimit(config.RateLimitConfig{BytesPerMinute: 8}))

	if rec := env.evaluateFrom("10.0.0.1:5000", `{"expression": "1,2,3"}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	rec := env.evaluateFrom("10.0.0.1:5000", `{"expression": "4,5,6"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "3" {
		t.Errorf("X-RateLimit-Remaining = %q, want 3", got)
	}
}

func TestRateLimit_ForwardedFor(t *testing.T) {
	env := newTestEnv(t, withRateLimit(config.RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		TrustForwardedFor: true,
	}))

	first := env.evaluateFrom("127.0.0.1:5000", `{"expression": "1"}`, "X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	second := env.evaluateFrom("127.0.0.1:5000", `{"expression": "1"}`, "X-Forwarded-For", "203.0.113.8")
	third := env.evaluateFrom("127.0.0.1:5001", `{"expression": "1"}`, "X-Forwarded-For", "203.0.113.7")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d, want 200 for distinct forwarded clients", first.Code, second.Code)
	}
	if third.Code != http.StatusTooManyRequests {
		t.Errorf("repeat forwarded client status = %d, want 429", third.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 20; i++ {
		if rec := env.evaluateFrom("10.0.0.1:5000", `{"expression": "1"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, withAuth(t, config.APIKeyConfig{Name: "ci", Key: "sk-ci"}))

	tests := []struct {
		name       string
		method     string
		target     string
		header     []string
		wantStatus int
	}{
		{"evaluate without key", http.MethodPost, "/v1/evaluate", nil, http.StatusUnauthorized},
		{"evaluate with key", http.MethodPost, "/v1/evaluate", []string{"Authorization", "Bearer sk-ci"}, http.StatusOK},
		{"evaluate with wrong key", http.MethodPost, "/v1/evaluate", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"journal without key", http.MethodGet, "/v1/journal", nil, http.StatusUnauthorized},
		{"journal with key", http.MethodGet, "/v1/journal", []string{"Authorization", "Bearer sk-ci"}, http.StatusOK},
		{"health is open", http.MethodGet, "/health", nil, http.StatusOK},
		{"version is open", http.MethodGet, "/version", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.target, `{"expression": "1"}`, tt.header...)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	n, err := testutil.GatherAndCount(env.registry, "strcalc_http_auth_failures_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("auth failure series = %d, want 2 (missing, invalid)", n)
	}
}

func TestRateLimit_KeyedByAPIKey(t *testing.T) {
	env := newTestEnv(t,
		withAuth(t, config.APIKeyConfig{Name: "ci", Key: "sk-ci"}),
		withRateLimit(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}),
	)

	bearer := []string{"Authorization", "Bearer sk-ci"}
	if rec := env.evaluateFrom("10.0.0.1:5000", `{"expression": "1"}`, bearer...); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Same key from another address shares the budget.
	if rec := env.evaluateFrom("10.0.0.2:5000", `{"expression": "1"}`, bearer...); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}
