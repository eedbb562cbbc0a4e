package asyncfile

import (
	"os"
	"path/filepath"
)

// FileAttributes mirrors the three facts the candidate resolver checks
// for each path: whether it exists, is a directory, or is a "." / ".."
// entry.
type FileAttributes struct {
	Exists bool
	IsDir  bool
	IsDot  bool
}

// CarveDirectoryPath creates directoryName (and any missing parents) if
// it doesn't already exist.
func CarveDirectoryPath(directoryName string) bool {
	return os.MkdirAll(directoryName, 0o755) == nil
}

// EnumerateFiles lists the entries directly under directoryName.
func EnumerateFiles(directoryName string) ([]string, error) {
	entries, err := os.ReadDir(directoryName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// DeleteDirectory removes directoryName and everything under it.
func DeleteDirectory(directoryName string) bool {
	return os.RemoveAll(directoryName) == nil
}

// DeleteFile removes a single file.
func DeleteFile(fileName string) bool {
	return os.Remove(fileName) == nil
}

// GetFileAttributes reports existence/directory/dot-entry status for a
// local path.
func GetFileAttributes(fileName string) FileAttributes {
	base := filepath.Base(fileName)
	attrs := FileAttributes{IsDot: base == "." || base == ".."}

	fi, err := os.Stat(fileName)
	if err != nil {
		return attrs
	}
	attrs.Exists = true
	attrs.IsDir = fi.IsDir()
	return attrs
}
