package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/service"
	"mercator-hq/strcalc/pkg/telemetry/logging"
)

// maxJournalLimit caps GET /v1/journal?limit.
const maxJournalLimit = 1000

// handleEvaluate serves POST /v1/evaluate.
//
// Responses:
//   - 200 {"id","sum"}
//   - 400 malformed request body
//   - 401 missing or invalid API key, when auth is enabled
//   - 413 expression over max_expression_bytes
//   - 422 {"id","error","issues"} when validation fails
//   - 429 client over a rate limit, with Retry-After
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	// JSON escaping can grow a string up to six times.
	if limit := s.deps.Service.MaxExpressionBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(limit)*6+1024)
	}

	var req EvaluateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "", fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "", "request body must contain a single JSON object")
		return
	}
	if req.Expression == nil {
		writeError(w, http.StatusBadRequest, "", `missing "expression" field`)
		return
	}

	release, ok := s.admit(w, r, len(*req.Expression))
	if !ok {
		return
	}
	defer release()

	result, err := s.deps.Service.Evaluate(r.Context(), service.Request{
		Expression: *req.Expression,
		Source:     journal.SourceHTTP,
		RequestID:  logging.GetRequestID(r.Context()),
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, EvaluateResponse{ID: result.ID, Sum: result.Sum})
	case errors.Is(err, service.ErrExpressionTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, result.ID, err.Error())
	case len(result.Issues) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			ID:     result.ID,
			Error:  err.Error(),
			Issues: toIssueResponses(result.Issues),
		})
	default:
		logging.FromContext(r.Context(), s.logger).Error("evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, result.ID, "internal error")
	}
}

// handleJournal serves GET /v1/journal.
//
// Query parameters: limit (default 100, max 1000), offset, outcome
// (success|rejected), issue_type, source (cli|http), since and until
// (RFC 3339).
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	query, err := parseJournalQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	records, err := s.deps.Journal.Query(r.Context(), query)
	if err != nil {
		s.journalError(w, r, err)
		return
	}
	total, err := s.deps.Journal.Count(r.Context(), query)
	if err != nil {
		s.journalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, JournalResponse{Records: records, Total: total})
}

func (s *Server) journalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), s.logger).Error("journal query failed", "error", err)
	writeError(w, http.StatusServiceUnavailable, "", "journal unavailable")
}

func parseJournalQuery(r *http.Request) (*journal.Query, error) {
	values := r.URL.Query()
	query := &journal.Query{
		Limit:     journal.DefaultQueryLimit,
		IssueType: values.Get("issue_type"),
		Source:    values.Get("source"),
		Outcome:   values.Get("outcome"),
	}

	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxJournalLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", maxJournalLimit)
		}
		query.Limit = limit
	}
	if v := values.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("offset must be a non-negative integer")
		}
		query.Offset = offset
	}
	switch query.Outcome {
	case "", journal.OutcomeSuccess, journal.OutcomeRejected:
	default:
		return nil, fmt.Errorf("outcome must be %q or %q", journal.OutcomeSuccess, journal.OutcomeRejected)
	}
	switch query.Source {
	case "", journal.SourceCLI, journal.SourceHTTP:
	default:
		return nil, fmt.Errorf("source must be %q or %q", journal.SourceCLI, journal.SourceHTTP)
	}
	for name, dst := range map[string]**time.Time{"since": &query.StartTime, "until": &query.EndTime} {
		if v := values.Get(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
			}
			*dst = &t
		}
	}

	return query, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, id, message string) {
	writeJSON(w, code, ErrorResponse{ID: id, Error: message})
}

func slogLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
