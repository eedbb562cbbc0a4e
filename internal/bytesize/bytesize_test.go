package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ByteSize
	}{
		{"plain zero", "0", 0},
		{"plain bytes", "1024", 1024},
		{"bytes suffix", "4096B", 4096},

		// The values config files actually carry: chunk sizes.
		{"default chunk", "64Ki", 64 * 1024},
		{"small chunk", "4Ki", 4 * 1024},
		{"big chunk", "1Mi", 1024 * 1024},
		{"fractional chunk", "1.5Mi", ByteSize(1.5 * 1024 * 1024)},

		// Binary units
		{"KiB", "1KiB", 1024},
		{"Mi", "100Mi", 100 * 1024 * 1024},
		{"GiB", "1GiB", 1024 * 1024 * 1024},
		{"Ti", "1Ti", 1024 * 1024 * 1024 * 1024},

		// Decimal units
		{"K", "1K", 1000},
		{"MB", "100MB", 100 * 1000 * 1000},
		{"G", "1G", 1000 * 1000 * 1000},
		{"TB", "1TB", 1000 * 1000 * 1000 * 1000},

		// Suffix case and spacing
		{"lowercase", "64ki", 64 * 1024},
		{"uppercase", "64KI", 64 * 1024},
		{"surrounding spaces", "  64Ki  ", 64 * 1024},
		{"space before unit", "64 Ki", 64 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unknown unit", "1Xi"},
		{"negative", "-1Gi"},
		{"unit only", "Gi"},
		{"garbage", "chunk"},
		{"two dots", "1.2.3Ki"},
		{"unit with digits", "1K2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseByteSize(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("64Ki")))
	assert.Equal(t, ByteSize(64*1024), b)

	err := b.UnmarshalText([]byte("64Qi"))
	assert.Error(t, err)
	assert.Equal(t, ByteSize(64*1024), b, "failed unmarshal must not clobber the value")
}

func TestString(t *testing.T) {
	tests := []struct {
		input ByteSize
		want  string
	}{
		{0, "0B"},
		{512, "512B"},
		{64 * KiB, "64.00KiB"},
		{1536 * KiB, "1.50MiB"},
		{2 * GiB, "2.00GiB"},
		{3 * TiB, "3.00TiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.String())
		})
	}
}

func TestConversionsAndConstants(t *testing.T) {
	b := ByteSize(64 * 1024)
	assert.Equal(t, uint64(65536), b.Uint64())
	assert.Equal(t, int64(65536), b.Int64())

	assert.Equal(t, ByteSize(1024), KiB)
	assert.Equal(t, ByteSize(1024*1024), MiB)
	assert.Equal(t, ByteSize(1000), KB)
	assert.Equal(t, ByteSize(1000*1000), MB)
	assert.Equal(t, 1024*MiB, GiB)
	assert.Equal(t, 1000*MB, GB)
}
