package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds call-scoped logging context for a single vectorized
// public call (readv, writev, ...).
type LogContext struct {
	TraceID    string    // OpenTelemetry trace ID
	SpanID     string    // OpenTelemetry span ID
	Call       string    // public call name (READV, WRITEV, LISTDIR, ...)
	ServerAddr string    // NFS server address being driven
	ExportID   string    // export root this context is bound to
	ShardCount int       // number of compounds the batch was split into
	StartTime  time.Time // for duration calculation
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

// NewLogContext creates a new LogContext bound to a server address.
func NewLogContext(serverAddr string) *LogContext {
	return &LogContext{
		ServerAddr: serverAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:    lc.TraceID,
		SpanID:     lc.SpanID,
		Call:       lc.Call,
		ServerAddr: lc.ServerAddr,
		ExportID:   lc.ExportID,
		ShardCount: lc.ShardCount,
		StartTime:  lc.StartTime,
	}
}

// WithCall returns a copy with the public call name set
func (lc *LogContext) WithCall(call string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Call = call
	}
	return clone
}

// WithExport returns a copy with the export id set
func (lc *LogContext) WithExport(exportID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ExportID = exportID
	}
	return clone
}

// WithShards returns a copy recording how many compounds the batch used
func (lc *LogContext) WithShards(n int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ShardCount = n
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
