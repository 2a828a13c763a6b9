package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNew tests the creation of a new health checker.
func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "default timeout", timeout: 0, expectedTimeout: DefaultCheckTimeout},
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("expected 0 checks, got %d", len(checker.ListChecks()))
			}
		})
	}
}

// TestRegisterCheck tests registering and removing checks.
func TestRegisterCheck(t *testing.T) {
	checker := New(time.Second)
	ok := func(context.Context) error { return nil }

	checker.RegisterCheck("journal", false, ok)
	checker.RegisterCheck("evaluator", true, ok)

	got := checker.ListChecks()
	if len(got) != 2 || got[0] != "evaluator" || got[1] != "journal" {
		t.Errorf("ListChecks() = %v, want [evaluator journal]", got)
	}

	checker.UnregisterCheck("journal")
	if got := checker.ListChecks(); len(got) != 1 {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

// TestCheckReadiness tests status aggregation.
func TestCheckReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("boom") }

	tests := []struct {
		name     string
		register func(*Checker)
		want     string
	}{
		{
			name:     "no checks",
			register: func(*Checker) {},
			want:     StatusReady,
		},
		{
			name: "all healthy",
			register: func(c *Checker) {
				c.RegisterCheck("evaluator", true, ok)
				c.RegisterCheck("journal", false, ok)
			},
			want: StatusReady,
		},
		{
			name: "non-critical failure",
			register: func(c *Checker) {
				c.RegisterCheck("evaluator", true, ok)
				c.RegisterCheck("journal", false, fail)
			},
			want: StatusDegraded,
		},
		{
			name: "critical failure",
			register: func(c *Checker) {
				c.RegisterCheck("evaluator", true, fail)
				c.RegisterCheck("journal", false, fail)
			},
			want: StatusUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			tt.register(checker)

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q (checks %+v)", status.Status, tt.want, status.Checks)
			}
		})
	}
}

// TestCheckReadiness_Timeout tests that slow checks are reported unhealthy.
func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", false, func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			// Simulate a check that ignores cancellation briefly.
			time.Sleep(10 * time.Millisecond)
			return nil
		}
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("slow check status = %q, want unhealthy", result.Status)
	}
	if result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check message = %q, want %q", result.Message, ErrCheckTimeout.Error())
	}
}

// TestReadinessHandler tests readiness status codes.
func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		critical bool
		wantCode int
	}{
		{name: "degraded stays available", critical: false, wantCode: http.StatusOK},
		{name: "critical failure", critical: true, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("dep", tt.critical, func(context.Context) error {
				return errors.New("down")
			})

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Checks["dep"].Message != "down" {
				t.Errorf("dep message = %q, want down", status.Checks["dep"].Message)
			}
		})
	}
}

// TestLivenessHandler tests the liveness endpoint.
func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("evaluator", true, func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}

	head := httptest.NewRecorder()
	checker.LivenessHandler()(head, httptest.NewRequest(http.MethodHead, "/health", nil))
	if head.Body.Len() != 0 {
		t.Errorf("HEAD body = %q, want empty", head.Body.String())
	}
}

// TestVersionHandler tests the version endpoint.
func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.3", "abc", "today")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc" {
		t.Errorf("info = %+v", info)
	}
}
