package plyparser

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatLE(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func cubePly() []byte {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n"
	var buf []byte
	buf = append(buf, []byte(header)...)
	for _, v := range []float32{1.0, 2.0, 3.0, 4.0, 5.0, 6.0} {
		buf = append(buf, floatLE(v)...)
	}
	return buf
}

func TestParseChunkHappyPath(t *testing.T) {
	data := cubePly()
	s := New()

	consumed := ParseChunk(s, data)

	require.Equal(t, "", s.ErrorStr)
	require.True(t, s.HasHeader)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, 2, s.VertexCount)
	assert.Equal(t, 12, s.StrideSize)
	assert.Equal(t, 24, s.PayloadSize)
	assert.Equal(t, 24, s.PayloadReadSize)
	assert.Equal(t, data[len(data)-24:], s.Payload)
}

func TestParseChunkChunkedDeliveryMatchesHappyPath(t *testing.T) {
	data := cubePly()
	want := New()
	ParseChunk(want, data)

	sizes := []int{1, 7, 13}
	s := New()
	offset := 0
	totalConsumed := 0
	for _, sz := range sizes {
		end := offset + sz
		if end > len(data) {
			end = len(data)
		}
		totalConsumed += ParseChunk(s, data[offset:end])
		offset = end
	}
	totalConsumed += ParseChunk(s, data[offset:])

	require.Equal(t, "", s.ErrorStr)
	assert.Equal(t, len(data), totalConsumed)
	assert.Equal(t, want.VertexCount, s.VertexCount)
	assert.Equal(t, want.StrideSize, s.StrideSize)
	assert.Equal(t, want.PayloadSize, s.PayloadSize)
	assert.Equal(t, want.PayloadReadSize, s.PayloadReadSize)
	assert.Equal(t, want.Payload, s.Payload)
}

func TestParseChunkByteAtATime(t *testing.T) {
	data := cubePly()
	s := New()
	for i := range data {
		ParseChunk(s, data[i:i+1])
	}
	require.Equal(t, "", s.ErrorStr)
	assert.Equal(t, 2, s.VertexCount)
	assert.Equal(t, 24, s.PayloadReadSize)
	assert.Equal(t, data[len(data)-24:], s.Payload)
}

func TestParseChunkUnsupportedProperty(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 1\nproperty uchar red\nend_header\n"
	s := New()
	ParseChunk(s, []byte(header))
	assert.Contains(t, s.ErrorStr, "Only supports float property")
}

func TestParseChunkPropertyFloatWithoutNameCountsStride(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 1\nproperty float\nend_header\n"
	s := New()
	ParseChunk(s, []byte(header))
	require.Equal(t, "", s.ErrorStr)
	assert.Equal(t, 4, s.StrideSize)
}

func TestParseChunkTruncatedPayload(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nend_header\n"
	payload := make([]byte, 20)
	s := New()
	ParseChunk(s, append([]byte(header), payload...))

	require.Equal(t, "", s.ErrorStr)
	assert.Equal(t, 36, s.PayloadSize)
	assert.Equal(t, 20, s.PayloadReadSize)
	assert.False(t, s.PayloadReadSize == s.PayloadSize)
}

func TestParseChunkZeroVertexFile(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 0\nproperty float x\nend_header\n"
	s := New()
	consumed := ParseChunk(s, []byte(header))

	require.Equal(t, "", s.ErrorStr)
	assert.Equal(t, len(header), consumed)
	assert.Equal(t, 0, s.PayloadSize)
	assert.Equal(t, 0, s.PayloadReadSize)
	assert.NotNil(t, s.Payload)
}

func TestParseChunkExceedsHeaderLineLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("ply\n")
	for i := 0; i < 1001; i++ {
		b.WriteString("comment filler\n")
	}
	b.WriteString("end_header\n")

	s := New()
	ParseChunk(s, []byte(b.String()))
	assert.Equal(t, "Exceeded header number of lines", s.ErrorStr)
}

func TestParseChunkMissingPlyToken(t *testing.T) {
	s := New()
	ParseChunk(s, []byte("not_ply\nend_header\n"))
	assert.Equal(t, "Expecting ply token at the top of the ply file.", s.ErrorStr)
}

func TestParseChunkUnsupportedElement(t *testing.T) {
	s := New()
	ParseChunk(s, []byte("ply\nelement face 4\nend_header\n"))
	assert.Equal(t, "Only supports vertex token type", s.ErrorStr)
}

func TestParseChunkUnparsableVertexCount(t *testing.T) {
	s := New()
	ParseChunk(s, []byte("ply\nelement vertex abc\nend_header\n"))
	assert.Equal(t, "Could not parse vertex count off ply file.", s.ErrorStr)
}

func TestParseChunkErrorSticky(t *testing.T) {
	s := New()
	ParseChunk(s, []byte("nope\n"))
	require.NotEqual(t, "", s.ErrorStr)
	n := ParseChunk(s, []byte("more data"))
	assert.Equal(t, 0, n)
}
