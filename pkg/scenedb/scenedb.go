// Package scenedb loads splat scenes from PLY files on top of pkg/asyncfile
// and pkg/task: opening a scene kicks off a chunked read whose callback
// feeds each chunk through pkg/plyparser, and the database tracks the
// resulting vertex buffer behind a small fixed-capacity handle table.
package scenedb

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kecho/splatastic/internal/logger"
	"github.com/kecho/splatastic/internal/telemetry"
	"github.com/kecho/splatastic/pkg/asyncfile"
	"github.com/kecho/splatastic/pkg/handle"
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/kecho/splatastic/pkg/plyparser"
	"github.com/kecho/splatastic/pkg/task"
	"go.opentelemetry.io/otel/trace"
)

// MaxScenes bounds how many scenes may be open (loading, loaded, or
// mid-copy) at once.
const MaxScenes = 8

// Handle names a live scene in a SceneDb's table.
type Handle = handle.Handle

// LoadStatus is a scene's externally observable lifecycle state.
type LoadStatus int

const (
	// StatusInvalidHandle is reported for a handle the table doesn't
	// recognize — it is never stored against a live slot.
	StatusInvalidHandle LoadStatus = iota
	StatusReading
	StatusSuccessFinish
	StatusCopyingPayload
	StatusFailed
	// StatusClosed is the status CloseScene leaves in the freed slot until
	// the slot is reused. The closed handle itself no longer names a live
	// slot, so CheckStatus on it reports StatusInvalidHandle, the same as
	// for a handle that was never opened.
	StatusClosed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusInvalidHandle:
		return "InvalidHandle"
	case StatusReading:
		return "Reading"
	case StatusSuccessFinish:
		return "SuccessFinish"
	case StatusCopyingPayload:
		return "CopyingPayload"
	case StatusFailed:
		return "Failed"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Metadata describes a successfully parsed scene's vertex layout.
type Metadata struct {
	VertexCount int
	Stride      int
}

type sceneState struct {
	mu sync.Mutex

	fileHandle  asyncfile.Handle
	copyTask    task.Task
	hasCopyTask bool
	errorStr    string
	bytesRead   uint64
	totalBytes  uint64
	ply         *plyparser.State
	span        trace.Span
}

// SceneDb loads and tracks up to MaxScenes concurrent PLY scenes.
type SceneDb struct {
	fs       *asyncfile.FileSystem
	ts       *task.TaskSystem
	scenes   *handle.Table[*sceneState]
	statuses [MaxScenes]statusSlot
	metrics  metrics.SceneMetrics
}

type statusSlot struct {
	mu sync.Mutex
	v  LoadStatus
}

func (s *statusSlot) store(v LoadStatus) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

func (s *statusSlot) load() LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// New creates a SceneDb bound to fs and ts.
func New(fs *asyncfile.FileSystem, ts *task.TaskSystem) *SceneDb {
	return &SceneDb{
		fs:      fs,
		ts:      ts,
		scenes:  handle.New[*sceneState](MaxScenes),
		metrics: metrics.NewSceneMetrics(),
	}
}

// OpenScene begins an asynchronous load of path, trying additionalRoots
// as fallback search roots if path itself doesn't resolve. It returns an
// invalid handle if MaxScenes concurrent scenes are already open.
func (db *SceneDb) OpenScene(ctx context.Context, path string, additionalRoots ...string) (Handle, error) {
	h, slot, err := db.scenes.Allocate()
	if err != nil {
		if db.metrics != nil {
			db.metrics.ObserveOpen(false)
		}
		return handle.Invalid(), fmt.Errorf("scenedb: too many scenes open (max %d)", MaxScenes)
	}

	// Every scene load gets its own span; if ctx doesn't already carry
	// one (the host thread opened it outside of any inbound trace), a
	// fresh trace id is minted so the load is still correlatable across
	// its nested yieldUntil frames and worker goroutines.
	spanCtx, span := telemetry.StartSceneSpan(ctx, "open_scene", path)
	if !span.SpanContext().HasTraceID() {
		span.SetAttributes(telemetry.SceneCorrelation(uuid.NewString()))
	}

	st := &sceneState{ply: plyparser.New(), span: span}
	*slot = st
	db.statuses[h.Index()].store(StatusReading)

	fh, err := db.fs.Read(spanCtx, asyncfile.ReadRequest{
		Path:            path,
		AdditionalRoots: additionalRoots,
		AutoStart:       true,
		OnRead: func(r asyncfile.ReadResponse) {
			db.onRead(h, st, r)
		},
	})
	if err != nil {
		span.End()
		db.scenes.Free(h)
		if db.metrics != nil {
			db.metrics.ObserveOpen(false)
		}
		return handle.Invalid(), err
	}

	st.mu.Lock()
	st.fileHandle = fh
	st.mu.Unlock()

	if db.metrics != nil {
		db.metrics.ObserveOpen(true)
		db.metrics.RecordOpenScenes(db.scenes.Len())
	}
	logger.Debug("scenedb: opened scene", logger.SceneHandle(h.Index()), logger.Path(path))
	return h, nil
}

// lookup resolves h to its scene state. The table stores *sceneState, so
// Get hands back a pointer to the slot's pointer; this flattens it.
func (db *SceneDb) lookup(h Handle) (*sceneState, bool) {
	p, ok := db.scenes.Get(h)
	if !ok {
		return nil, false
	}
	return *p, true
}

func (db *SceneDb) onRead(h Handle, st *sceneState, r asyncfile.ReadResponse) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch r.Status {
	case asyncfile.StatusFail:
		st.errorStr = "Failed reading file: " + r.Error.String()
		db.statuses[h.Index()].store(StatusFailed)
		db.finishSpanLocked(st, "failed", st.errorStr)

	case asyncfile.StatusReading:
		if st.ply.ErrorStr != "" {
			return
		}
		st.bytesRead += uint64(r.Size)
		st.totalBytes = uint64(r.FileSize)
		plyparser.ParseChunk(st.ply, r.Buffer)
		db.statuses[h.Index()].store(StatusReading)

	case asyncfile.StatusSuccess:
		switch {
		case st.ply.ErrorStr != "":
			st.errorStr = st.ply.ErrorStr
			db.statuses[h.Index()].store(StatusFailed)
			db.finishSpanLocked(st, "failed", st.errorStr)
		case !st.ply.HasHeader:
			st.errorStr = "Did not find end_header token"
			db.statuses[h.Index()].store(StatusFailed)
			db.finishSpanLocked(st, "failed", st.errorStr)
		case st.ply.PayloadReadSize != st.ply.PayloadSize:
			st.errorStr = fmt.Sprintf("Payload of ply file is incomplete: %d / %d", st.ply.PayloadReadSize, st.ply.PayloadSize)
			db.statuses[h.Index()].store(StatusFailed)
			db.finishSpanLocked(st, "failed", st.errorStr)
		default:
			db.statuses[h.Index()].store(StatusSuccessFinish)
			db.finishSpanLocked(st, "success", "")
			logger.Debug("scenedb: scene finished loading",
				logger.SceneHandle(h.Index()),
				logger.VertexCount(uint32(st.ply.VertexCount)),
				logger.Stride(uint32(st.ply.StrideSize)))
		}
	}
}

// finishSpanLocked ends st's open_scene span (if not already ended) and
// records the outcome metric. Caller must hold st.mu.
func (db *SceneDb) finishSpanLocked(st *sceneState, outcome, errMsg string) {
	if st.span == nil {
		return
	}
	if errMsg != "" {
		st.span.SetAttributes(telemetry.SceneError(errMsg))
	}
	st.span.End()
	st.span = nil
	if db.metrics != nil {
		db.metrics.ObserveOutcome(outcome)
	}
}

// CheckStatus reports h's current lifecycle state.
func (db *SceneDb) CheckStatus(h Handle) LoadStatus {
	if !db.scenes.Contains(h) {
		return StatusInvalidHandle
	}
	return db.statuses[h.Index()].load()
}

// ErrorStr returns the error recorded for h, or "" if none (including
// for unknown handles).
func (db *SceneDb) ErrorStr(h Handle) string {
	st, ok := db.lookup(h)
	if !ok {
		return ""
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.errorStr
}

// IOProgress reports bytes read and total bytes known so far; both are
// zero until the underlying read enters StatusReading.
func (db *SceneDb) IOProgress(h Handle) (bytesRead, totalBytes uint64) {
	st, ok := db.lookup(h)
	if !ok {
		return 0, 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bytesRead, st.totalBytes
}

// Resolve blocks until h's underlying file read has finished, one way or
// another.
func (db *SceneDb) Resolve(ctx context.Context, h Handle) error {
	st, ok := db.lookup(h)
	if !ok {
		return nil
	}
	st.mu.Lock()
	fh := st.fileHandle
	st.mu.Unlock()
	return db.fs.Wait(ctx, fh)
}

// PayloadSize returns the parsed payload size in bytes, 0 before the
// header is known.
func (db *SceneDb) PayloadSize(h Handle) int {
	st, ok := db.lookup(h)
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ply.PayloadSize
}

// SceneMetadata returns the parsed vertex count and stride. ok is false
// if the handle is unknown or the header hasn't been parsed yet.
func (db *SceneDb) SceneMetadata(h Handle) (m Metadata, ok bool) {
	st, found := db.lookup(h)
	if !found {
		return Metadata{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.ply.HasHeader {
		return Metadata{}, false
	}
	return Metadata{VertexCount: st.ply.VertexCount, Stride: st.ply.StrideSize}, true
}

// CopyPayload copies the loaded payload into dest asynchronously, via a
// dedicated task. dest is considered a borrowed view: while it is held
// (until CloseCopyPayload releases it) a second call returns a contract
// error instead of starting another copy.
func (db *SceneDb) CopyPayload(h Handle, dest []byte) error {
	st, ok := db.lookup(h)
	if !ok {
		return fmt.Errorf("scenedb: unknown handle")
	}

	st.mu.Lock()
	if st.hasCopyTask {
		st.mu.Unlock()
		return fmt.Errorf("scenedb: a copy destination is already held for this scene")
	}
	if db.statuses[h.Index()].load() != StatusSuccessFinish {
		st.mu.Unlock()
		return fmt.Errorf("scenedb: scene is not finished loading")
	}
	if st.ply.Payload == nil {
		st.mu.Unlock()
		return fmt.Errorf("scenedb: scene has no payload")
	}
	if len(dest) < st.ply.PayloadSize {
		st.mu.Unlock()
		return fmt.Errorf("scenedb: destination too small: have %d need %d", len(dest), st.ply.PayloadSize)
	}
	payload := st.ply.Payload
	st.mu.Unlock()

	t, err := db.ts.CreateTask(context.Background(), "scenedb.copyPayload", nil, func(ctx context.Context) {
		copy(dest, payload)
		db.statuses[h.Index()].store(StatusSuccessFinish)
		if db.metrics != nil {
			db.metrics.ObserveCopyPayload(len(payload))
		}
	})
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.copyTask = t
	st.hasCopyTask = true
	st.mu.Unlock()

	db.statuses[h.Index()].store(StatusCopyingPayload)
	db.ts.Execute(t)
	return nil
}

// CloseCopyPayload waits for the copy task to finish and releases the
// destination view it was borrowing. It is safe to call even if no copy
// is in flight.
func (db *SceneDb) CloseCopyPayload(ctx context.Context, h Handle) error {
	st, ok := db.lookup(h)
	if !ok {
		return nil
	}
	st.mu.Lock()
	hasTask := st.hasCopyTask
	t := st.copyTask
	st.mu.Unlock()
	if !hasTask {
		return nil
	}
	if err := db.ts.Wait(ctx, t); err != nil {
		return err
	}
	db.ts.CleanTaskTree(t)

	st.mu.Lock()
	st.hasCopyTask = false
	st.mu.Unlock()
	return nil
}

// CloseScene drains the scene's underlying file task, cleans up any
// in-flight copy task, frees the parsed payload, and returns the slot to
// the table. It is idempotent: closing an already-closed or unknown
// handle is a no-op.
func (db *SceneDb) CloseScene(ctx context.Context, h Handle) bool {
	st, ok := db.lookup(h)
	if !ok {
		return false
	}

	st.mu.Lock()
	fh := st.fileHandle
	copyTask := st.copyTask
	hasCopyTask := st.hasCopyTask
	st.mu.Unlock()

	db.fs.CloseHandle(ctx, fh)
	if hasCopyTask {
		// A copy may still be borrowing the host's destination buffer;
		// drain it before the payload is released.
		db.ts.Wait(ctx, copyTask)
		db.ts.CleanTaskTree(copyTask)
	}

	st.mu.Lock()
	db.finishSpanLocked(st, "closed", "")
	st.mu.Unlock()

	db.statuses[h.Index()].store(StatusClosed)
	db.scenes.Free(h)
	if db.metrics != nil {
		db.metrics.RecordOpenScenes(db.scenes.Len())
	}
	return true
}
