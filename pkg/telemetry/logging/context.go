package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// EvaluationIDKey is the context key for evaluation IDs.
	EvaluationIDKey contextKey = "evaluation_id"

	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"
)

// WithEvaluationID adds an evaluation ID to the context.
func WithEvaluationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, EvaluationIDKey, id)
}

// GetEvaluationID retrieves the evaluation ID from the context.
func GetEvaluationID(ctx context.Context) string {
	if id, ok := ctx.Value(EvaluationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContext returns logger with the context fields attached, for code
// that logs without passing ctx to each call.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}

func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var fields []slog.Attr
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, slog.String(string(RequestIDKey), id))
	}
	if id := GetEvaluationID(ctx); id != "" {
		fields = append(fields, slog.String(string(EvaluationIDKey), id))
	}
	return fields
}
