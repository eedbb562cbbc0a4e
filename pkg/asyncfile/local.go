package asyncfile

import "io"

// candidateHandle is the common surface both local files and S3 objects
// present to the read loop: a sized, chunk-readable, closable stream.
type candidateHandle interface {
	Size() int64
	// ReadChunk reads into buf, reporting eof=true on the call during
	// which the stream was exhausted. A call may return n > 0 and
	// eof=true together.
	ReadChunk(buf []byte) (n int, eof bool, err error)
	Close() error
}

type localReadHandle struct {
	f    io.ReadCloser
	size int64
}

func (h *localReadHandle) Size() int64 { return h.size }

func (h *localReadHandle) ReadChunk(buf []byte) (n int, eof bool, err error) {
	n, err = h.f.Read(buf)
	if err == io.EOF {
		return n, true, nil
	}
	if err != nil {
		return n, false, err
	}
	return n, false, nil
}

func (h *localReadHandle) Close() error { return h.f.Close() }
