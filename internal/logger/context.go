package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID      string    // OpenTelemetry trace ID
	SpanID       string    // OpenTelemetry span ID
	Operation    string    // Operation name (upload, download, list, ...)
	MountPath    string    // Virtual mount path the request targets
	ClientIP     string    // Client IP address (without port)
	PrincipalID  string    // Authenticated principal
	PrincipalKind string   // admin, user, api_key, public
	StartTime    time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:       lc.TraceID,
		SpanID:        lc.SpanID,
		Operation:     lc.Operation,
		MountPath:     lc.MountPath,
		ClientIP:      lc.ClientIP,
		PrincipalID:   lc.PrincipalID,
		PrincipalKind: lc.PrincipalKind,
		StartTime:     lc.StartTime,
	}
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithMount returns a copy with the mount path set
func (lc *LogContext) WithMount(mountPath string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.MountPath = mountPath
	}
	return clone
}

// WithPrincipal returns a copy with principal info set
func (lc *LogContext) WithPrincipal(id, kind string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.PrincipalID = id
		clone.PrincipalKind = kind
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
