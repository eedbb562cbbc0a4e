package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for scene-loader operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Component-specific keys use their component's prefix.
const (
	// ========================================================================
	// Task system attributes
	// ========================================================================
	AttrTaskID     = "task.id"    // Task slot identifier
	AttrTaskDesc   = "task.desc"  // Human-readable task description
	AttrTaskState  = "task.state" // Lifecycle state at span start
	AttrWorkerID   = "worker.id"  // Worker index within the pool
	AttrStackDepth = "worker.stack_depth"

	// ========================================================================
	// File system attributes
	// ========================================================================
	AttrFilePath      = "file.path"       // Resolved file/object path
	AttrFileCandidate = "file.candidate"  // Path candidate under consideration
	AttrFileRoot      = "file.root"       // Additional search root
	AttrFileStatus    = "file.status"     // FileStatus value
	AttrFileSize      = "file.size"       // Total file size
	AttrFileChunkSize = "file.chunk_size" // Read buffer size
	AttrFileBytesRead = "file.bytes_read" // Cumulative bytes read
	AttrFileEOF       = "file.eof"        // End of file indicator

	// ========================================================================
	// Scene database attributes
	// ========================================================================
	AttrSceneHandle      = "scene.handle" // Scene load slot id
	AttrScenePath        = "scene.path"   // Requested scene path
	AttrSceneStatus      = "scene.status" // SceneLoadStatus value
	AttrSceneVertexCount = "scene.vertex_count"
	AttrSceneStride      = "scene.stride"
	AttrScenePayloadSize = "scene.payload_size"
	AttrSceneError       = "scene.error"
	AttrSceneCorrelation = "scene.correlation_id"

	// ========================================================================
	// Storage backend attributes (S3 roots)
	// ========================================================================
	AttrBucket = "storage.bucket"
	AttrKey    = "storage.key"
	AttrRegion = "storage.region"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	SpanTaskExecute = "task.execute"
	SpanTaskWait    = "task.wait"

	SpanFileRead    = "file.read"
	SpanFileWrite   = "file.write"
	SpanFileResolve = "file.resolve_candidate"

	SpanSceneOpen        = "scenedb.open_scene"
	SpanSceneCopyPayload = "scenedb.copy_payload"
	SpanSceneClose       = "scenedb.close_scene"
)

// TaskID returns an attribute for a task slot id
func TaskID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrTaskID, int64(id))
}

// TaskDesc returns an attribute for a task description
func TaskDesc(desc string) attribute.KeyValue {
	return attribute.String(AttrTaskDesc, desc)
}

// TaskState returns an attribute for a task lifecycle state
func TaskState(state string) attribute.KeyValue {
	return attribute.String(AttrTaskState, state)
}

// WorkerID returns an attribute for a worker pool index
func WorkerID(id int) attribute.KeyValue {
	return attribute.Int(AttrWorkerID, id)
}

// StackDepth returns an attribute for a worker's nested frame depth
func StackDepth(depth int) attribute.KeyValue {
	return attribute.Int(AttrStackDepth, depth)
}

// FilePath returns an attribute for a resolved file path
func FilePath(path string) attribute.KeyValue {
	return attribute.String(AttrFilePath, path)
}

// FileCandidate returns an attribute for a path candidate
func FileCandidate(path string) attribute.KeyValue {
	return attribute.String(AttrFileCandidate, path)
}

// FileRoot returns an attribute for an additional search root
func FileRoot(root string) attribute.KeyValue {
	return attribute.String(AttrFileRoot, root)
}

// FileStatus returns an attribute for a FileStatus value
func FileStatus(status string) attribute.KeyValue {
	return attribute.String(AttrFileStatus, status)
}

// FileSize returns an attribute for a total file size
func FileSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrFileSize, size)
}

// FileChunkSize returns an attribute for the read buffer size
func FileChunkSize(size int) attribute.KeyValue {
	return attribute.Int(AttrFileChunkSize, size)
}

// FileBytesRead returns an attribute for cumulative bytes read
func FileBytesRead(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrFileBytesRead, int64(n))
}

// FileEOF returns an attribute for the end-of-file indicator
func FileEOF(eof bool) attribute.KeyValue {
	return attribute.Bool(AttrFileEOF, eof)
}

// SceneHandle returns an attribute for a scene load slot id
func SceneHandle(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrSceneHandle, int64(id))
}

// ScenePath returns an attribute for a requested scene path
func ScenePath(path string) attribute.KeyValue {
	return attribute.String(AttrScenePath, path)
}

// SceneStatus returns an attribute for a SceneLoadStatus value
func SceneStatus(status string) attribute.KeyValue {
	return attribute.String(AttrSceneStatus, status)
}

// SceneVertexCount returns an attribute for a parsed vertex count
func SceneVertexCount(n int) attribute.KeyValue {
	return attribute.Int(AttrSceneVertexCount, n)
}

// SceneStride returns an attribute for bytes-per-vertex
func SceneStride(n int) attribute.KeyValue {
	return attribute.Int(AttrSceneStride, n)
}

// ScenePayloadSize returns an attribute for a payload byte size
func ScenePayloadSize(n int) attribute.KeyValue {
	return attribute.Int(AttrScenePayloadSize, n)
}

// SceneError returns an attribute for a scene load error string
func SceneError(msg string) attribute.KeyValue {
	return attribute.String(AttrSceneError, msg)
}

// SceneCorrelation returns an attribute for a minted correlation id
func SceneCorrelation(id string) attribute.KeyValue {
	return attribute.String(AttrSceneCorrelation, id)
}

// Bucket returns an attribute for an S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for a cloud region
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartTaskSpan starts a span for a task execution.
// This is a convenience function that sets common attributes.
func StartTaskSpan(ctx context.Context, desc string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		TaskDesc(desc),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanTaskExecute, trace.WithAttributes(allAttrs...))
}

// StartFileSpan starts a span for a file system operation ("read" or
// "write"), tagged with the requested path.
func StartFileSpan(ctx context.Context, operation, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		FilePath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "file."+operation, trace.WithAttributes(allAttrs...))
}

// StartSceneSpan starts a span for a scene database operation.
func StartSceneSpan(ctx context.Context, operation, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ScenePath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "scenedb."+operation, trace.WithAttributes(allAttrs...))
}
