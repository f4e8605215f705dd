// Package logging carries request-scoped identity and trace information
// through context and provides the request logger used by middleware.
package logging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

type contextKey string

const (
	// UserIDKey holds the authenticated user ID in a request context.
	UserIDKey contextKey = "user_id"
	// RoleKey holds the authenticated user's role.
	RoleKey contextKey = "role"
	// TraceIDKey holds the request trace ID.
	TraceIDKey contextKey = "trace_id"
)

// Logger decorates the application logger with context extraction helpers.
type Logger struct {
	*logger.Logger
}

// NewLogger wraps a base logger. A nil base falls back to the default.
func NewLogger(base *logger.Logger) *Logger {
	if base == nil {
		base = logger.NewDefault("http")
	}
	return &Logger{Logger: base}
}

// WithContext returns a logger annotated with trace and identity fields
// present on the context.
func (l *Logger) WithContext(ctx context.Context) *logger.Logger {
	out := l.Logger
	if traceID := GetTraceID(ctx); traceID != "" {
		out = out.WithField("trace_id", traceID)
	}
	if userID := GetUserID(ctx); userID != "" {
		out = out.WithField("user_id", userID)
	}
	if role := GetRole(ctx); role != "" {
		out = out.WithField("role", role)
	}
	return out
}

// LogRequest records one completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).WithFields(map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("http request")
}

// LogSecurityEvent records an auth or rate-limit related event.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, details map[string]interface{}) {
	l.WithContext(ctx).WithField("event", event).WithFields(details).Warn("security event")
}

// NewTraceID returns a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithUserID stores the authenticated user ID on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithRole stores the authenticated role on the context.
func WithRole(ctx context.Context, role string) context.Context {
	if role == "" {
		return ctx
	}
	return context.WithValue(ctx, RoleKey, role)
}

// GetTraceID extracts the trace ID from a context, if any.
func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

// GetUserID extracts the authenticated user ID from a context.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// GetRole extracts the authenticated role from a context.
func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}
