package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Task System
	// ========================================================================
	KeyTaskID     = "task_id"     // Task slot identifier
	KeyTaskGen    = "task_gen"    // Task handle generation
	KeyTaskDesc   = "task_desc"   // Human-readable task description
	KeyWorkerID   = "worker_id"   // Worker index within the pool
	KeyStackDepth = "stack_depth" // Nested scheduler frame depth

	// ========================================================================
	// File System Operations
	// ========================================================================
	KeyPath      = "path"       // Resolved file/object path
	KeyCandidate = "candidate"  // Path candidate under consideration
	KeyRoot      = "root"       // Additional search root
	KeyIOStatus  = "io_status"  // FileStatus value
	KeyOffset    = "offset"     // Byte offset for read/write operations
	KeySize      = "size"       // Byte count
	KeyBytesRead = "bytes_read" // Cumulative bytes read
	KeyFileSize  = "file_size"  // Total file size
	KeyEOF       = "eof"        // End of file indicator

	// ========================================================================
	// Scene / PLY
	// ========================================================================
	KeySceneHandle = "scene_handle" // Scene load slot id
	KeySceneStatus = "scene_status" // SceneLoadStatus value
	KeyVertexCount = "vertex_count" // Parsed vertex count
	KeyStride      = "stride"       // Bytes per vertex
	KeyPayloadSize = "payload_size" // Total payload byte size

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyAttempt    = "attempt"     // Retry attempt number
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// TaskID returns a slog.Attr for a task slot id.
func TaskID(id uint32) slog.Attr {
	return slog.Uint64(KeyTaskID, uint64(id))
}

// TaskGen returns a slog.Attr for a task handle generation.
func TaskGen(gen uint32) slog.Attr {
	return slog.Uint64(KeyTaskGen, uint64(gen))
}

// TaskDesc returns a slog.Attr for a task's description.
func TaskDesc(desc string) slog.Attr {
	return slog.String(KeyTaskDesc, desc)
}

// WorkerID returns a slog.Attr for a worker index.
func WorkerID(id int) slog.Attr {
	return slog.Int(KeyWorkerID, id)
}

// StackDepth returns a slog.Attr for the nested scheduler frame depth.
func StackDepth(depth int) slog.Attr {
	return slog.Int(KeyStackDepth, depth)
}

// Path returns a slog.Attr for a resolved path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Candidate returns a slog.Attr for a path candidate.
func Candidate(p string) slog.Attr {
	return slog.String(KeyCandidate, p)
}

// Root returns a slog.Attr for an additional search root.
func Root(r string) slog.Attr {
	return slog.String(KeyRoot, r)
}

// IOStatus returns a slog.Attr for a FileStatus value.
func IOStatus(s string) slog.Attr {
	return slog.String(KeyIOStatus, s)
}

// Offset returns a slog.Attr for a byte offset.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Size returns a slog.Attr for a byte count.
func Size(s int) slog.Attr {
	return slog.Int(KeySize, s)
}

// BytesRead returns a slog.Attr for cumulative bytes read.
func BytesRead(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesRead, n)
}

// FileSize returns a slog.Attr for the total file size.
func FileSize(n uint64) slog.Attr {
	return slog.Uint64(KeyFileSize, n)
}

// EOF returns a slog.Attr for the end-of-file indicator.
func EOF(eof bool) slog.Attr {
	return slog.Bool(KeyEOF, eof)
}

// SceneHandle returns a slog.Attr for a scene load slot id.
func SceneHandle(id uint32) slog.Attr {
	return slog.Uint64(KeySceneHandle, uint64(id))
}

// SceneStatus returns a slog.Attr for a SceneLoadStatus value.
func SceneStatus(s string) slog.Attr {
	return slog.String(KeySceneStatus, s)
}

// VertexCount returns a slog.Attr for the parsed vertex count.
func VertexCount(n uint32) slog.Attr {
	return slog.Uint64(KeyVertexCount, uint64(n))
}

// Stride returns a slog.Attr for bytes-per-vertex.
func Stride(n uint32) slog.Attr {
	return slog.Uint64(KeyStride, uint64(n))
}

// PayloadSize returns a slog.Attr for the total payload byte size.
func PayloadSize(n uint64) slog.Attr {
	return slog.Uint64(KeyPayloadSize, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}
