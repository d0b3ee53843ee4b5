// Package diskspace checks free space before a download is written.
package diskspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/minidrive/minidrive/internal/util/format"
)

// DefaultMargin leaves 10% headroom over the expected size.
const DefaultMargin = 1.1

// InsufficientSpaceError reports a download that would not fit.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space for %s: need %s, have %s available",
		e.Path, format.Size(e.RequiredBytes), format.Size(e.AvailableBytes))
}

// Check returns an InsufficientSpaceError when the filesystem holding
// targetPath has less than requiredBytes*margin free. Unknown sizes
// (requiredBytes <= 0) and filesystems that cannot be queried pass.
func Check(targetPath string, requiredBytes int64, margin float64) error {
	if requiredBytes <= 0 {
		return nil
	}
	available, ok := Available(targetPath)
	if !ok {
		return nil
	}

	required := int64(float64(requiredBytes) * margin)
	if available < required {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  required,
			AvailableBytes: available,
		}
	}
	return nil
}

// Available returns the bytes free to the current user on the filesystem
// holding path. path itself need not exist, but its directory must.
func Available(path string) (int64, bool) {
	return available(filepath.Dir(path))
}

// IsInsufficientSpace reports whether err is or wraps an InsufficientSpaceError.
func IsInsufficientSpace(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}
