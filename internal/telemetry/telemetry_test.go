package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "splatastic", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ScenePath("scenes/cube.ply"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("TaskID", func(t *testing.T) {
		attr := TaskID(42)
		assert.Equal(t, AttrTaskID, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("TaskDesc", func(t *testing.T) {
		attr := TaskDesc("asyncfile.read")
		assert.Equal(t, AttrTaskDesc, string(attr.Key))
		assert.Equal(t, "asyncfile.read", attr.Value.AsString())
	})

	t.Run("WorkerID", func(t *testing.T) {
		attr := WorkerID(3)
		assert.Equal(t, AttrWorkerID, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("StackDepth", func(t *testing.T) {
		attr := StackDepth(2)
		assert.Equal(t, AttrStackDepth, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("FilePath", func(t *testing.T) {
		attr := FilePath("/data/scenes/cube.ply")
		assert.Equal(t, AttrFilePath, string(attr.Key))
		assert.Equal(t, "/data/scenes/cube.ply", attr.Value.AsString())
	})

	t.Run("FileCandidate", func(t *testing.T) {
		attr := FileCandidate("pkgA/cube.ply")
		assert.Equal(t, AttrFileCandidate, string(attr.Key))
		assert.Equal(t, "pkgA/cube.ply", attr.Value.AsString())
	})

	t.Run("FileSize", func(t *testing.T) {
		attr := FileSize(1048576)
		assert.Equal(t, AttrFileSize, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("FileBytesRead", func(t *testing.T) {
		attr := FileBytesRead(4096)
		assert.Equal(t, AttrFileBytesRead, string(attr.Key))
		assert.Equal(t, int64(4096), attr.Value.AsInt64())
	})

	t.Run("FileEOF", func(t *testing.T) {
		attr := FileEOF(true)
		assert.Equal(t, AttrFileEOF, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("SceneHandle", func(t *testing.T) {
		attr := SceneHandle(5)
		assert.Equal(t, AttrSceneHandle, string(attr.Key))
		assert.Equal(t, int64(5), attr.Value.AsInt64())
	})

	t.Run("SceneVertexCount", func(t *testing.T) {
		attr := SceneVertexCount(1024)
		assert.Equal(t, AttrSceneVertexCount, string(attr.Key))
		assert.Equal(t, int64(1024), attr.Value.AsInt64())
	})

	t.Run("SceneStride", func(t *testing.T) {
		attr := SceneStride(12)
		assert.Equal(t, AttrSceneStride, string(attr.Key))
		assert.Equal(t, int64(12), attr.Value.AsInt64())
	})

	t.Run("SceneError", func(t *testing.T) {
		attr := SceneError("Only supports float property")
		assert.Equal(t, AttrSceneError, string(attr.Key))
		assert.Equal(t, "Only supports float property", attr.Value.AsString())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("path/to/object")
		assert.Equal(t, AttrKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})
}

func TestStartTaskSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartTaskSpan(ctx, "asyncfile.read")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartTaskSpan(ctx, "scenedb.copyPayload", WorkerID(0), StackDepth(1))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartFileSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartFileSpan(ctx, "read", "scenes/cube.ply")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartFileSpan(ctx, "write", "out/scene.ply", FileSize(1024))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartSceneSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSceneSpan(ctx, "open_scene", "scenes/cube.ply")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartSceneSpan(ctx, "copy_payload", "scenes/cube.ply", ScenePayloadSize(24))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
