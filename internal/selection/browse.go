package selection

import (
	"fmt"

	"github.com/minidrive/minidrive/internal/localfs"
)

// Candidates lists the files under dir the picker would offer: regular,
// non-hidden files with an accepted extension. With recursive set,
// subdirectories (except hidden ones) are searched too.
func Candidates(dir string, recursive bool) ([]localfs.FileEntry, error) {
	var out []localfs.FileEntry
	keep := func(e localfs.FileEntry) {
		if !e.IsDir && Accepts(e.Name) {
			out = append(out, e)
		}
	}

	if recursive {
		err := localfs.WalkFiles(dir, localfs.Options{}, func(e localfs.FileEntry) error {
			keep(e)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		return out, nil
	}

	entries, err := localfs.ListDirectory(dir, localfs.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		keep(e)
	}
	return out, nil
}
