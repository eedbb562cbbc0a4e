package commands

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsS3Client(t *testing.T) {
	tests := []struct {
		name  string
		roots []string
		paths []string
		want  bool
	}{
		{name: "no s3 anywhere", roots: []string{"/assets"}, paths: []string{"cube.ply"}, want: false},
		{name: "s3 root", roots: []string{"s3://bucket/prefix"}, paths: []string{"cube.ply"}, want: true},
		{name: "s3 path argument", roots: nil, paths: []string{"s3://bucket/cube.ply"}, want: true},
		{name: "empty", roots: nil, paths: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsS3Client(tt.roots, tt.paths))
		})
	}
}

func TestVersionCommand_Short(t *testing.T) {
	Version, Commit, Date = "1.2.3", "abc123", "2026-01-01"
	versionShort = true
	defer func() { versionShort = false }()

	out := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})
	assert.Equal(t, "1.2.3\n", out)
}

func TestVersionCommand_Full(t *testing.T) {
	Version, Commit, Date = "1.2.3", "abc123", "2026-01-01"
	versionShort = false

	out := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})
	assert.Contains(t, out, "splatload 1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestConfigCommand_PrintsDefaults(t *testing.T) {
	cfgFile = ""
	out := captureStdout(t, func() {
		err := runConfigShow(configCmd, nil)
		require.NoError(t, err)
	})
	assert.Contains(t, out, "logging:")
	assert.Contains(t, out, "runtime:")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	saved := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = saved }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}
