package asyncfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kecho/splatastic/internal/logger"
	"github.com/kecho/splatastic/pkg/bufpool"
	"github.com/kecho/splatastic/pkg/handle"
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/kecho/splatastic/pkg/task"
)

const defaultChunkSize = 64 * 1024

type requestKind int

const (
	requestKindRead requestKind = iota
	requestKindWrite
)

type request struct {
	kind requestKind

	candidates []string // read only
	path       string    // write only
	writeBuf   []byte

	onRead  func(ReadResponse)
	onWrite func(WriteResponse)

	status status32
	ioErr  ioErr32

	openHandle candidateHandle // touched only by the task body goroutine
	task       task.Task
}

// FileSystem turns Read/Write requests into task-driven streaming I/O.
// The requests table is guarded by a mutex held only across
// allocate/free/index, never across I/O.
type FileSystem struct {
	mu       sync.Mutex
	requests *handle.Table[*request]

	ts        *task.TaskSystem
	s3Client  *s3.Client
	chunkSize int
	metrics   metrics.FileMetrics
}

// Option configures a FileSystem at construction time.
type Option func(*FileSystem)

// WithS3Client registers the client used to resolve s3:// roots and
// write targets. Without it, any s3:// candidate fails to resolve.
func WithS3Client(client *s3.Client) Option {
	return func(fs *FileSystem) { fs.s3Client = client }
}

// WithChunkSize overrides the read buffer size (default 64 KiB).
func WithChunkSize(n int) Option {
	return func(fs *FileSystem) {
		if n > 0 {
			fs.chunkSize = n
		}
	}
}

// New creates a FileSystem bound to ts, which schedules every request's
// task body.
func New(ts *task.TaskSystem, opts ...Option) *FileSystem {
	fs := &FileSystem{
		requests:  handle.New[*request](0),
		ts:        ts,
		chunkSize: defaultChunkSize,
		metrics:   metrics.NewFileMetrics(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// OpenRequestCount returns the number of live (unclosed) requests, so
// callers can assert the table drains to zero after closing every
// outstanding handle.
func (fs *FileSystem) OpenRequestCount() int {
	return fs.requests.Len()
}

// Read allocates a read request and its backing task. If req.AutoStart
// is set the task is scheduled immediately; otherwise the caller must
// call Execute.
func (fs *FileSystem) Read(ctx context.Context, req ReadRequest) (Handle, error) {
	if req.OnRead == nil {
		return handle.Invalid(), fmt.Errorf("asyncfile: read request must provide OnRead")
	}

	fs.mu.Lock()
	h, slot, err := fs.requests.Allocate()
	if err != nil {
		fs.mu.Unlock()
		return handle.Invalid(), err
	}
	rec := &request{
		kind:       requestKindRead,
		candidates: buildCandidates(req.Path, req.AdditionalRoots),
		onRead:     req.OnRead,
	}
	rec.status.store(StatusIdle)
	*slot = rec

	t, err := fs.ts.CreateTask(ctx, "asyncfile.read:"+req.Path, rec, func(taskCtx context.Context) {
		fs.runRead(taskCtx, rec)
	})
	if err != nil {
		fs.requests.Free(h)
		fs.mu.Unlock()
		return handle.Invalid(), err
	}
	rec.task = t
	fs.mu.Unlock()

	if req.AutoStart {
		fs.ts.Execute(t)
	}
	return h, nil
}

// Write allocates a write request and its backing task.
func (fs *FileSystem) Write(ctx context.Context, req WriteRequest) (Handle, error) {
	if req.OnWrite == nil {
		return handle.Invalid(), fmt.Errorf("asyncfile: write request must provide OnWrite")
	}

	fs.mu.Lock()
	h, slot, err := fs.requests.Allocate()
	if err != nil {
		fs.mu.Unlock()
		return handle.Invalid(), err
	}
	rec := &request{
		kind:     requestKindWrite,
		path:     req.Path,
		writeBuf: append([]byte(nil), req.Buffer...),
		onWrite:  req.OnWrite,
	}
	rec.status.store(StatusIdle)
	*slot = rec

	t, err := fs.ts.CreateTask(ctx, "asyncfile.write:"+req.Path, rec, func(taskCtx context.Context) {
		fs.runWrite(taskCtx, rec)
	})
	if err != nil {
		fs.requests.Free(h)
		fs.mu.Unlock()
		return handle.Invalid(), err
	}
	rec.task = t
	fs.mu.Unlock()

	if req.AutoStart {
		fs.ts.Execute(t)
	}
	return h, nil
}

// Execute schedules h's task (for requests created without AutoStart).
func (fs *FileSystem) Execute(h Handle) error {
	t, ok := fs.asTask(h)
	if !ok {
		return fmt.Errorf("asyncfile: unknown handle")
	}
	fs.ts.Execute(t)
	return nil
}

// AsTask returns the task backing h.
func (fs *FileSystem) AsTask(h Handle) (task.Task, bool) {
	return fs.asTask(h)
}

func (fs *FileSystem) asTask(h Handle) (task.Task, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec, ok := fs.lookup(h)
	if !ok {
		return task.Task{}, false
	}
	return rec.task, true
}

// lookup resolves h to its request. The table stores *request, so Get
// hands back a pointer to the slot's pointer; this flattens it.
func (fs *FileSystem) lookup(h Handle) (*request, bool) {
	p, ok := fs.requests.Get(h)
	if !ok {
		return nil, false
	}
	return *p, true
}

// Wait blocks until h's task has finished.
func (fs *FileSystem) Wait(ctx context.Context, h Handle) error {
	t, ok := fs.asTask(h)
	if !ok {
		return fmt.Errorf("asyncfile: unknown handle")
	}
	return fs.ts.Wait(ctx, t)
}

// CloseHandle waits for h's task, cleans its subtree, closes the OS
// handle if one is still open, and frees the request. It is safe to
// call on an already-closed handle (no-op).
func (fs *FileSystem) CloseHandle(ctx context.Context, h Handle) error {
	fs.mu.Lock()
	rec, ok := fs.lookup(h)
	if !ok {
		fs.mu.Unlock()
		return nil
	}
	t := rec.task
	fs.mu.Unlock()

	if err := fs.ts.Wait(ctx, t); err != nil {
		return err
	}
	fs.ts.CleanTaskTree(t)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec, ok = fs.lookup(h)
	if !ok {
		return nil
	}
	if rec.openHandle != nil {
		rec.openHandle.Close()
		rec.openHandle = nil
	}
	fs.requests.Free(h)
	return nil
}

func (fs *FileSystem) runRead(ctx context.Context, rec *request) {
	rec.status.store(StatusOpening)
	rec.onRead(ReadResponse{Status: StatusOpening})

	candidate, ok := fs.firstExistingCandidate(ctx, rec.candidates)
	if !ok {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedOpening)
		rec.onRead(ReadResponse{Status: StatusFail, Error: IoErrorFailedOpening})
		return
	}

	oh, size, err := fs.openForRead(ctx, candidate)
	if err != nil {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedOpening)
		rec.onRead(ReadResponse{FilePath: candidate, Status: StatusFail, Error: IoErrorFailedOpening})
		return
	}
	rec.openHandle = oh

	resolved := absolutePath(candidate)
	rec.status.store(StatusReading)
	logger.DebugCtx(ctx, "asyncfile: resolved candidate", logger.Candidate(candidate), logger.Path(resolved))

	buf := bufpool.Get(fs.chunkSize)
	defer bufpool.Put(buf)
	for {
		var n int
		var eof bool
		var readErr error
		task.YieldUntil(ctx, func() {
			n, eof, readErr = oh.ReadChunk(buf)
		})

		if readErr != nil {
			oh.Close()
			rec.openHandle = nil
			rec.status.store(StatusFail)
			rec.ioErr.store(IoErrorFailedReading)
			logger.WarnCtx(ctx, "asyncfile: read failed", logger.Path(resolved), logger.Err(readErr))
			rec.onRead(ReadResponse{FilePath: resolved, Status: StatusFail, Error: IoErrorFailedReading})
			if fs.metrics != nil {
				fs.metrics.ObserveOutcome("read", "fail")
			}
			return
		}

		rec.onRead(ReadResponse{
			FilePath: resolved,
			Status:   StatusReading,
			Buffer:   buf[:n],
			Size:     n,
			FileSize: size,
		})
		if fs.metrics != nil {
			fs.metrics.ObserveChunk("read", n)
		}

		if eof {
			break
		}
	}

	oh.Close()
	rec.openHandle = nil
	rec.status.store(StatusSuccess)
	rec.onRead(ReadResponse{FilePath: resolved, Status: StatusSuccess, FileSize: size})
	if fs.metrics != nil {
		fs.metrics.ObserveOutcome("read", "success")
	}
}

func (fs *FileSystem) runWrite(ctx context.Context, rec *request) {
	rec.status.store(StatusOpening)
	rec.onWrite(WriteResponse{Status: StatusOpening})

	if isS3Path(rec.path) {
		fs.runWriteS3(ctx, rec)
		return
	}
	fs.runWriteLocal(ctx, rec)
}

func (fs *FileSystem) runWriteLocal(ctx context.Context, rec *request) {
	if !CarveDirectoryPath(filepath.Dir(rec.path)) {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedCreatingDir)
		rec.onWrite(WriteResponse{Status: StatusFail, Error: IoErrorFailedCreatingDir})
		return
	}

	f, err := os.OpenFile(rec.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedOpening)
		rec.onWrite(WriteResponse{Status: StatusFail, Error: IoErrorFailedOpening})
		return
	}

	rec.status.store(StatusWriting)
	var writeErr error
	task.YieldUntil(ctx, func() {
		_, writeErr = f.Write(rec.writeBuf)
	})

	if writeErr != nil {
		f.Close()
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedWriting)
		rec.onWrite(WriteResponse{Status: StatusFail, Error: IoErrorFailedWriting})
		if fs.metrics != nil {
			fs.metrics.ObserveOutcome("write", "fail")
		}
		return
	}

	f.Close()
	rec.status.store(StatusSuccess)
	rec.onWrite(WriteResponse{Status: StatusSuccess})
	if fs.metrics != nil {
		fs.metrics.ObserveChunk("write", len(rec.writeBuf))
		fs.metrics.ObserveOutcome("write", "success")
	}
}

func (fs *FileSystem) runWriteS3(ctx context.Context, rec *request) {
	bucket, key, ok := splitS3Path(rec.path)
	if !ok {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedOpening)
		rec.onWrite(WriteResponse{Status: StatusFail, Error: IoErrorFailedOpening})
		return
	}

	rec.status.store(StatusWriting)
	var writeErr error
	task.YieldUntil(ctx, func() {
		writeErr = fs.writeS3(ctx, bucket, key, rec.writeBuf)
	})

	if writeErr != nil {
		rec.status.store(StatusFail)
		rec.ioErr.store(IoErrorFailedWriting)
		rec.onWrite(WriteResponse{Status: StatusFail, Error: IoErrorFailedWriting})
		if fs.metrics != nil {
			fs.metrics.ObserveOutcome("write", "fail")
		}
		return
	}

	rec.status.store(StatusSuccess)
	rec.onWrite(WriteResponse{Status: StatusSuccess})
	if fs.metrics != nil {
		fs.metrics.ObserveChunk("write", len(rec.writeBuf))
		fs.metrics.ObserveOutcome("write", "success")
	}
}

func (fs *FileSystem) openForRead(ctx context.Context, candidate string) (candidateHandle, int64, error) {
	if isS3Path(candidate) {
		bucket, key, ok := splitS3Path(candidate)
		if !ok {
			return nil, 0, fmt.Errorf("asyncfile: malformed s3 path %q", candidate)
		}
		return fs.openS3ForRead(ctx, bucket, key)
	}

	f, err := os.Open(candidate)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return &localReadHandle{f: f, size: fi.Size()}, fi.Size(), nil
}
