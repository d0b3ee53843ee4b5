// Package localfs lists and walks local directories, skipping hidden
// entries unless asked not to.
package localfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry is a file or directory on the local filesystem.
type FileEntry struct {
	Path    string
	Name    string
	Size    int64 // 0 for directories
	IsDir   bool
	ModTime time.Time
}

// Options controls hidden-entry filtering.
type Options struct {
	// IncludeHidden keeps dot-files and descends into dot-directories.
	IncludeHidden bool
}

// IsHiddenName reports whether name is a dot-file. "." and ".." are not hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// ListDirectory returns the entries of path in the order os.ReadDir gives
// (sorted by name). Entries that cannot be stat'ed are skipped.
func ListDirectory(path string, opts Options) ([]FileEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		if !opts.IncludeHidden && IsHiddenName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result = append(result, newEntry(filepath.Join(path, entry.Name()), info))
	}
	return result, nil
}

// WalkFiles calls fn for every regular file under root, depth-first.
// Hidden directories are not entered unless opts.IncludeHidden is set.
// Unreadable entries are skipped; an error from fn stops the walk.
func WalkFiles(root string, opts Options, fn func(FileEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != root && !opts.IncludeHidden && IsHiddenName(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(newEntry(path, info))
	})
}

func newEntry(path string, info fs.FileInfo) FileEntry {
	e := FileEntry{
		Path:    path,
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}
