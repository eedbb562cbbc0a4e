package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds scheduling-scoped logging context. It travels alongside
// a context.Context from task creation through every nested yieldUntil frame,
// so log lines emitted deep inside a suspended task still carry the
// originating trace and worker identity.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	WorkerID  int       // Worker index that scheduled the task, -1 if host thread
	TaskDesc  string    // Task description, as passed to createTask
	StartTime time.Time // For duration calculation
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

// NewLogContext creates a new LogContext for a task about to be scheduled.
func NewLogContext(taskDesc string) *LogContext {
	return &LogContext{
		WorkerID:  -1,
		TaskDesc:  taskDesc,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		WorkerID:  lc.WorkerID,
		TaskDesc:  lc.TaskDesc,
		StartTime: lc.StartTime,
	}
}

// WithWorker returns a copy with the worker id set
func (lc *LogContext) WithWorker(workerID int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.WorkerID = workerID
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
