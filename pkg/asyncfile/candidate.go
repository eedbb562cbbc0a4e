package asyncfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const s3Prefix = "s3://"

func isS3Path(path string) bool {
	return strings.HasPrefix(path, s3Prefix)
}

// splitS3Path parses "s3://bucket/key/with/slashes" into bucket and key.
func splitS3Path(path string) (bucket, key string, ok bool) {
	rest := strings.TrimPrefix(path, s3Prefix)
	idx := strings.IndexByte(rest, '/')
	if idx < 0 || idx == 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

// buildCandidates builds the ordered candidate list: path itself, then
// root+sep+path for each additional root. A trailing separator on the
// root is trimmed before joining so roots may be given either way.
func buildCandidates(path string, additionalRoots []string) []string {
	candidates := make([]string, 0, len(additionalRoots)+1)
	candidates = append(candidates, path)
	for _, root := range additionalRoots {
		trimmed := strings.TrimRight(root, "/\\")
		candidates = append(candidates, trimmed+"/"+path)
	}
	return candidates
}

// candidateAttributes reports whether a candidate exists, is a
// directory, or is a "." / ".." entry — the three reasons resolution
// skips an entry.
func (fs *FileSystem) candidateAttributes(ctx context.Context, candidate string) (exists, isDir, isDot bool, err error) {
	if isS3Path(candidate) {
		bucket, key, ok := splitS3Path(candidate)
		if !ok {
			return false, false, false, fmt.Errorf("asyncfile: malformed s3 path %q", candidate)
		}
		return fs.s3AttributesWith(ctx, bucket, key)
	}

	base := filepath.Base(candidate)
	isDot = base == "." || base == ".."

	fi, statErr := os.Stat(candidate)
	if os.IsNotExist(statErr) {
		return false, false, isDot, nil
	}
	if statErr != nil {
		return false, false, isDot, statErr
	}
	return true, fi.IsDir(), isDot, nil
}

// firstExistingCandidate returns the first candidate that exists and
// isn't a directory or dot-entry.
func (fs *FileSystem) firstExistingCandidate(ctx context.Context, candidates []string) (string, bool) {
	for _, c := range candidates {
		exists, isDir, isDot, err := fs.candidateAttributes(ctx, c)
		if err != nil || !exists || isDir || isDot {
			continue
		}
		return c, true
	}
	return "", false
}

func absolutePath(path string) string {
	if isS3Path(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
