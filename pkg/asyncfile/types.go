// Package asyncfile turns chunked file reads and writes into
// task-driven streaming I/O: every request runs as a task body on the
// worker pool, yields around each blocking chunk read or write via
// pkg/task.YieldUntil, and streams progress back through a callback.
// A failed read is not retried; it ends the request with StatusFail.
//
// A "root" is either a local directory or an s3://bucket/prefix URI;
// read requests resolve against the request path plus a list of
// fallback roots, taking the first candidate that names a readable
// file.
package asyncfile

import "github.com/kecho/splatastic/pkg/handle"

// Handle names a live request in a FileSystem's request table.
type Handle = handle.Handle

// IoError is the low-level file I/O error taxonomy.
type IoError int

const (
	IoErrorNone IoError = iota
	IoErrorFailedOpening
	IoErrorFailedReading
	IoErrorFailedWriting
	IoErrorFailedCreatingDir
)

func (e IoError) String() string {
	switch e {
	case IoErrorNone:
		return "none"
	case IoErrorFailedOpening:
		return "failed_opening"
	case IoErrorFailedReading:
		return "failed_reading"
	case IoErrorFailedWriting:
		return "failed_writing"
	case IoErrorFailedCreatingDir:
		return "failed_creating_dir"
	default:
		return "unknown"
	}
}

// Status is a request's monotone-forward-except-Fail progress marker.
type Status int32

const (
	StatusIdle Status = iota
	StatusOpening
	StatusReading
	StatusWriting
	StatusSuccess
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusOpening:
		return "opening"
	case StatusReading:
		return "reading"
	case StatusWriting:
		return "writing"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ReadResponse is delivered to a read request's callback. Buffer is
// borrowed: it is only valid for the duration of the callback call, and
// must not be retained past it.
type ReadResponse struct {
	FilePath string
	Status   Status
	Buffer   []byte
	Size     int
	FileSize int64
	Error    IoError
}

// WriteResponse is delivered to a write request's callback.
type WriteResponse struct {
	Status Status
	Error  IoError
}

// ReadRequest describes an asynchronous read.
type ReadRequest struct {
	// Path is tried first; AdditionalRoots are tried in order as
	// Root+separator+Path fallbacks.
	Path            string
	AdditionalRoots []string
	OnRead          func(ReadResponse)
	// AutoStart schedules the underlying task immediately; otherwise the
	// caller must call FileSystem.Execute.
	AutoStart bool
}

// WriteRequest describes an asynchronous write. Unlike reads, writes
// target exactly Path — there is no candidate-root fallback for writes.
type WriteRequest struct {
	Path      string
	Buffer    []byte
	OnWrite   func(WriteResponse)
	AutoStart bool
}
