package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRoundsUpToClass(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"header probe", 100, HeaderClassSize},
		{"exact header class", HeaderClassSize, HeaderClassSize},
		{"just above header class", HeaderClassSize + 1, ChunkClassSize},
		{"default read chunk", ChunkClassSize, ChunkClassSize},
		{"large chunk override", 256 << 10, PayloadClassSize},
		{"exact top class", PayloadClassSize, PayloadClassSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Get(tt.size)
			defer Put(buf)

			assert.Equal(t, tt.size, len(buf), "length must match the request exactly")
			assert.Equal(t, tt.wantCap, cap(buf), "capacity must be the smallest fitting class")
		})
	}
}

func TestGetOversizedBypassesPool(t *testing.T) {
	size := PayloadClassSize + 1
	buf := Get(size)

	assert.Equal(t, size, len(buf))
	assert.Equal(t, size, cap(buf), "oversized buffers are allocated exactly, not from a class")

	// Returning it must be a no-op, not a panic.
	Put(buf)
}

func TestPutIgnoresForeignBuffers(t *testing.T) {
	p := New(64, 256)

	// A buffer whose capacity matches no class must not be pooled.
	p.Put(make([]byte, 100))

	// nil is tolerated.
	p.Put(nil)

	buf := p.Get(64)
	assert.Equal(t, 64, cap(buf))
}

func TestPoolReusesReturnedBuffer(t *testing.T) {
	p := New(32)

	first := p.Get(32)
	first[0] = 0xAB
	p.Put(first)

	second := p.Get(32)
	// sync.Pool gives no reuse guarantee, but whatever comes back must be
	// full-length and writable.
	require.Equal(t, 32, len(second))
	second[0] = 0xCD
	p.Put(second)
}

func TestNewSortsAndDeduplicatesClasses(t *testing.T) {
	p := New(512, 64, 512, 0, -3, 128)

	require.Len(t, p.classes, 3)
	assert.Equal(t, 64, p.classes[0].size)
	assert.Equal(t, 128, p.classes[1].size)
	assert.Equal(t, 512, p.classes[2].size)
}

func TestNewEmptyFallsBackToDefaultLadder(t *testing.T) {
	p := New()

	require.Len(t, p.classes, 3)
	assert.Equal(t, HeaderClassSize, p.classes[0].size)
	assert.Equal(t, ChunkClassSize, p.classes[1].size)
	assert.Equal(t, PayloadClassSize, p.classes[2].size)
}

func TestConcurrentGetPut(t *testing.T) {
	p := New(HeaderClassSize, ChunkClassSize)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				size := 1 + (g*37+i*13)%ChunkClassSize
				buf := p.Get(size)
				if len(buf) != size {
					t.Errorf("Get(%d) returned len %d", size, len(buf))
					return
				}
				buf[0] = byte(i)
				p.Put(buf)
			}
		}(g)
	}
	wg.Wait()
}

func BenchmarkGetPutChunk(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := Get(ChunkClassSize)
		Put(buf)
	}
}

func BenchmarkGetPutParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := Get(ChunkClassSize)
			Put(buf)
		}
	})
}
