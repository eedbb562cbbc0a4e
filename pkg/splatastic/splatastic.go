// Package splatastic is the external binding surface: the host-facing
// API a caller embeds to load splat scenes without reaching into
// pkg/task, pkg/asyncfile, or pkg/scenedb directly. It mirrors the
// native extension's module-level init/shutdown plus a SceneAsyncRequest
// object, as an explicit Runtime value instead of process-global state.
package splatastic

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kecho/splatastic/pkg/asyncfile"
	"github.com/kecho/splatastic/pkg/scenedb"
	"github.com/kecho/splatastic/pkg/task"
)

// Config configures a Runtime.
type Config struct {
	// WorkerCount is the number of task-system workers. Defaults to 4.
	WorkerCount int
	// ChunkSize overrides the file system's read chunk size.
	ChunkSize int
	// AdditionalRoots are fallback search roots (local paths or
	// s3://bucket/prefix URIs) every scene open resolves against, in
	// addition to the literal path given.
	AdditionalRoots []string
	// S3Client, if set, lets scenes resolve against s3:// roots.
	S3Client *s3.Client
}

// Runtime owns the task system, file system, and scene database backing
// every SceneAsyncRequest created from it. Callers create exactly one
// per process (or per test), and must call Shutdown when done.
type Runtime struct {
	cfg Config
	ts  *task.TaskSystem
	fs  *asyncfile.FileSystem
	sdb *scenedb.SceneDb
}

// Init starts the worker pool and constructs the file system and scene
// database backing it.
func Init(cfg Config) (*Runtime, error) {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	ts := task.New(cfg.WorkerCount)

	var opts []asyncfile.Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, asyncfile.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.S3Client != nil {
		opts = append(opts, asyncfile.WithS3Client(cfg.S3Client))
	}
	fs := asyncfile.New(ts, opts...)
	sdb := scenedb.New(fs, ts)

	return &Runtime{cfg: cfg, ts: ts, fs: fs, sdb: sdb}, nil
}

// Shutdown stops every worker, waiting for in-flight tasks to finish.
func (r *Runtime) Shutdown() error {
	return r.ts.Shutdown()
}

// OpenScene begins loading path and returns a handle to it, wrapped in a
// SceneAsyncRequest. It fails if MaxScenes scenes are already open.
func (r *Runtime) OpenScene(ctx context.Context, path string) (*SceneAsyncRequest, error) {
	h, err := r.sdb.OpenScene(ctx, path, r.cfg.AdditionalRoots...)
	if err != nil {
		return nil, fmt.Errorf("splatastic: could not open designated scene, there might be too many scenes open in flight: %w", err)
	}
	return &SceneAsyncRequest{rt: r, handle: h, fileName: path}, nil
}

// SceneAsyncRequest is the host-visible handle to an in-flight or
// completed scene load. The zero value is not usable; construct one via
// Runtime.OpenScene.
type SceneAsyncRequest struct {
	rt       *Runtime
	handle   scenedb.Handle
	fileName string

	mu       sync.Mutex
	copyHeld bool
	closed   bool
}

// Status reports the scene's lifecycle state and, when it is Failed, the
// recorded error string.
func (s *SceneAsyncRequest) Status() (scenedb.LoadStatus, string) {
	status := s.rt.sdb.CheckStatus(s.handle)
	if status != scenedb.StatusFailed {
		return status, ""
	}
	return status, s.rt.sdb.ErrorStr(s.handle)
}

// IOProgress reports bytes read against total bytes known so far while
// the scene is in StatusReading; in any other status both are zero.
func (s *SceneAsyncRequest) IOProgress() (bytesRead, totalBytes uint64) {
	status := s.rt.sdb.CheckStatus(s.handle)
	if status != scenedb.StatusReading {
		return 0, 0
	}
	return s.rt.sdb.IOProgress(s.handle)
}

// Resolve blocks until the underlying read has finished.
func (s *SceneAsyncRequest) Resolve(ctx context.Context) error {
	return s.rt.sdb.Resolve(ctx, s.handle)
}

// PayloadSize returns the parsed vertex payload size in bytes.
func (s *SceneAsyncRequest) PayloadSize() int {
	return s.rt.sdb.PayloadSize(s.handle)
}

// Metadata returns the vertex count and stride, once known.
func (s *SceneAsyncRequest) Metadata() (scenedb.Metadata, error) {
	m, ok := s.rt.sdb.SceneMetadata(s.handle)
	if !ok {
		return scenedb.Metadata{}, fmt.Errorf("splatastic: invalid scene metadata")
	}
	return m, nil
}

// RequestCopyPayload borrows dest — which must be at least PayloadSize()
// bytes — and asynchronously copies the loaded payload into it. Calling
// this again before CloseCopyPayload releases the previous destination
// returns an error, mirroring "copy request already happening".
func (s *SceneAsyncRequest) RequestCopyPayload(dest []byte) error {
	s.mu.Lock()
	if s.copyHeld {
		s.mu.Unlock()
		return fmt.Errorf("splatastic: copy request already happening, ensure to close the previous request before proceeding")
	}
	s.copyHeld = true
	s.mu.Unlock()

	if err := s.rt.sdb.CopyPayload(s.handle, dest); err != nil {
		s.mu.Lock()
		s.copyHeld = false
		s.mu.Unlock()
		return fmt.Errorf("splatastic: error trying to copy payload, closing request: %w", err)
	}
	return nil
}

// CloseCopyPayload releases the destination buffer borrowed by
// RequestCopyPayload. Calling it without a copy in flight is an error.
func (s *SceneAsyncRequest) CloseCopyPayload(ctx context.Context) error {
	s.mu.Lock()
	if !s.copyHeld {
		s.mu.Unlock()
		return fmt.Errorf("splatastic: copy has not started, ensure to start a request before proceeding")
	}
	s.copyHeld = false
	s.mu.Unlock()

	return s.rt.sdb.CloseCopyPayload(ctx, s.handle)
}

// Close releases the scene, draining its underlying task. It is the
// SceneAsyncRequest destructor; calling it more than once is a no-op.
func (s *SceneAsyncRequest) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.rt.sdb.CloseScene(ctx, s.handle)
}
