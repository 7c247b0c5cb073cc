// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// WebhookEvent logs the outcome of an inbound webhook delivery.
func (l *Logger) WebhookEvent(endpoint, submissionID, outcome string) {
	l.Info("webhook_event",
		slog.String("endpoint", endpoint),
		slog.String("submission_id", submissionID),
		slog.String("outcome", outcome),
	)
}

// WebhookRejected logs a rejected webhook delivery.
func (l *Logger) WebhookRejected(endpoint, reason string) {
	l.Warn("webhook_rejected",
		slog.String("endpoint", endpoint),
		slog.String("reason", reason),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// MessageDispatch logs an outbound SMS/LMS dispatch attempt.
func (l *Logger) MessageDispatch(messageType, recipient string, success bool, detail string) {
	if success {
		l.Info("message_dispatch",
			slog.String("type", messageType),
			slog.String("recipient", recipient),
			slog.Bool("success", success),
		)
		return
	}
	l.Error("message_dispatch",
		slog.String("type", messageType),
		slog.String("recipient", recipient),
		slog.Bool("success", success),
		slog.String("detail", detail),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
