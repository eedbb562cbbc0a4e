package asyncfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidatesTrimsTrailingSeparator(t *testing.T) {
	got := buildCandidates("scene.ply", []string{"/pkgA", "/pkgB/"})
	assert.Equal(t, []string{"scene.ply", "/pkgA/scene.ply", "/pkgB/scene.ply"}, got)
}

func TestBuildCandidatesNoRoots(t *testing.T) {
	got := buildCandidates("scene.ply", nil)
	assert.Equal(t, []string{"scene.ply"}, got)
}

func TestFirstExistingCandidateSkipsMissingAndDirs(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.ply")
	subdir := filepath.Join(dir, "adir")
	require.NoError(t, os.Mkdir(subdir, 0o755))
	real := filepath.Join(dir, "scene.ply")
	require.NoError(t, os.WriteFile(real, []byte("data"), 0o644))

	fs := New(nil)
	got, ok := fs.firstExistingCandidate(context.Background(), []string{missing, subdir, real})
	require.True(t, ok)
	assert.Equal(t, real, got)
}

func TestFirstExistingCandidateNoneFound(t *testing.T) {
	fs := New(nil)
	_, ok := fs.firstExistingCandidate(context.Background(), []string{"/does/not/exist"})
	assert.False(t, ok)
}
