package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/telemetry/logging"
)

// FailureRecorder counts rejected requests. *metrics.Collector satisfies it.
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// Middleware rejects requests without a valid API key.
type Middleware struct {
	validator *Validator
	header    string
	scheme    string
	recorder  FailureRecorder
	logger    *slog.Logger
}

// NewMiddleware builds the middleware from the auth configuration. An
// empty scheme on the Authorization header means "Bearer".
func NewMiddleware(cfg *config.AuthConfig, validator *Validator, recorder FailureRecorder, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	header := cfg.Header
	if header == "" {
		header = config.DefaultAuthHeader
	}
	scheme := cfg.Scheme
	if scheme == "" && strings.EqualFold(header, "Authorization") {
		scheme = "Bearer"
	}

	return &Middleware{
		validator: validator,
		header:    header,
		scheme:    scheme,
		recorder:  recorder,
		logger:    logger.With("component", "auth"),
	}
}

// Handle wraps next with API key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := m.extract(r)
		var info *KeyInfo
		if err == nil {
			info, err = m.validator.Validate(key)
		}
		if err != nil {
			m.reject(w, r, err)
			return
		}

		logging.FromContext(r.Context(), m.logger).Debug("API key authenticated",
			"key_name", info.Name,
			"path", r.URL.Path,
		)

		ctx := WithIdentity(r.Context(), Identity{Name: info.Name})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extract reads the key from the configured header, stripping the scheme
// when one is configured. The scheme match is case-insensitive.
func (m *Middleware) extract(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(m.header))
	if value == "" {
		return "", ErrMissingKey
	}
	if m.scheme == "" {
		return value, nil
	}

	scheme, key, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, m.scheme) {
		return "", ErrMissingKey
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingKey
	}
	return key, nil
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, ErrMissingKey):
		reason = "missing"
	case errors.Is(err, ErrKeyDisabled):
		reason = "disabled"
	}
	if m.recorder != nil {
		m.recorder.RecordAuthFailure(reason)
	}

	logging.FromContext(r.Context(), m.logger).Warn("request rejected",
		"reason", reason,
		"remote_addr", r.RemoteAddr,
		"path", r.URL.Path,
	)

	if m.scheme != "" {
		w.Header().Set("WWW-Authenticate", m.scheme)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
