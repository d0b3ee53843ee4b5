// Package selection is the file-picker boundary for uploads.
//
// Pick applies the advisory extension filter and captures the file's size.
// Nothing past this point re-validates the extension; the backend decides.
package selection

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/minidrive/minidrive/internal/constants"
)

var (
	// ErrUnsupportedType is returned for files outside the picker's filter.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoSelection is returned by Open after the selection was reset.
	ErrNoSelection = errors.New("no file selected")
)

// LocalFile is a file chosen from the local filesystem.
// Reset clears the selection; later Opens fail with ErrNoSelection.
type LocalFile struct {
	mu   sync.Mutex
	path string
	name string
	size int64
}

// Pick stats path and returns it as a selection.
// Directories and extensions other than .jpg, .png and .pdf are refused.
// The extension check ignores case, as a browser file dialog does.
func Pick(path string) (*LocalFile, error) {
	if !Accepts(path) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedType,
			filepath.Base(path), strings.Join(constants.AllowedUploadExtensions, ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &LocalFile{
		path: path,
		name: info.Name(),
		size: info.Size(),
	}, nil
}

// Accepts reports whether the picker filter admits path.
func Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(constants.AllowedUploadExtensions, ext)
}

// Name returns the base name sent to the backend.
func (f *LocalFile) Name() string { return f.name }

// Size returns the size captured at pick time.
func (f *LocalFile) Size() int64 { return f.size }

// Path returns the local path, or "" after Reset.
func (f *LocalFile) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// Open opens the selected file for reading.
func (f *LocalFile) Open() (io.ReadCloser, error) {
	f.mu.Lock()
	path := f.path
	f.mu.Unlock()

	if path == "" {
		return nil, ErrNoSelection
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return file, nil
}

// Reset clears the selection.
func (f *LocalFile) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = ""
}

// IsReset reports whether Reset has been called.
func (f *LocalFile) IsReset() bool {
	return f.Path() == ""
}
