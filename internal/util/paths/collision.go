// Package paths picks local destinations for downloaded files.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// FileForDownload is one file headed for the local disk.
type FileForDownload struct {
	ID        uint
	Name      string
	LocalPath string
	Size      int64
}

// ResolveCollisions makes every LocalPath in files unique. Files sharing a
// path get their ID inserted before the extension:
//
//	scan.pdf, scan.pdf -> scan_3.pdf, scan_7.pdf
//
// The slice is modified in place. Returns it with the number of files
// that were renamed.
func ResolveCollisions(files []FileForDownload) ([]FileForDownload, int) {
	if len(files) == 0 {
		return files, 0
	}

	byPath := make(map[string][]int)
	for i, f := range files {
		byPath[f.LocalPath] = append(byPath[f.LocalPath], i)
	}

	renamed := 0
	for path, indices := range byPath {
		if len(indices) <= 1 {
			continue
		}
		renamed += len(indices)
		for _, idx := range indices {
			files[idx].LocalPath = withSuffix(path, strconv.FormatUint(uint64(files[idx].ID), 10))
		}
	}

	return files, renamed
}

// Unique returns path if nothing exists there, otherwise the first of
// name_1.ext, name_2.ext, ... that is free.
func Unique(path string) (string, error) {
	for n := 0; ; n++ {
		candidate := path
		if n > 0 {
			candidate = withSuffix(path, strconv.Itoa(n))
		}
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
	}
}

func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	return fmt.Sprintf("%s_%s%s", base, suffix, ext)
}
