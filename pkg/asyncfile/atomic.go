package asyncfile

import "sync/atomic"

// status32 and ioErr32 are atomic.Int32 wrappers typed to Status/IoError
// so request fields can be observed safely from any goroutine without a
// lock.

type status32 struct {
	v atomic.Int32
}

func (s *status32) store(v Status) { s.v.Store(int32(v)) }
func (s *status32) load() Status   { return Status(s.v.Load()) }

type ioErr32 struct {
	v atomic.Int32
}

func (e *ioErr32) store(v IoError) { e.v.Store(int32(v)) }
func (e *ioErr32) load() IoError   { return IoError(e.v.Load()) }
