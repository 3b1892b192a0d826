// Package file provides file system helpers to inspect and remove extraction directories.
package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// DirState returns if the path exists and how many entries it has. A regular file
// counts as an existing path with one entry so it is never mistaken for an empty dir.
// Only up to max entries are counted, max <= 0 counts all of them.
func DirState(path string, max int) (exists bool, entries int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("could not stat %q: %w", path, err)
	}

	if !info.IsDir() {
		return true, 1, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return true, 0, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(max)
	if err != nil && !errors.Is(err, io.EOF) {
		return true, 0, fmt.Errorf("could not read %q: %w", path, err)
	}

	return true, len(names), nil
}

// RemoveAllIfPresent removes the path and everything it contains. Missing paths are
// not an error.
func RemoveAllIfPresent(path string) (removed bool, err error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("could not stat %q: %w", path, err)
	}

	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("could not remove %q: %w", path, err)
	}

	return true, nil
}
