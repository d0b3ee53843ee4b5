package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range []string{
		"a.pdf",
		".secret.pdf",
		"sub/b.png",
		"sub/deeper/c.jpg",
		".hidden/d.pdf",
	} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0644))
	}
	return root
}

func names(entries []FileEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

func TestIsHiddenName(t *testing.T) {
	assert.True(t, IsHiddenName(".env"))
	assert.False(t, IsHiddenName("."))
	assert.False(t, IsHiddenName(".."))
	assert.False(t, IsHiddenName("a.pdf"))
}

func TestListDirectory(t *testing.T) {
	root := makeTree(t)

	entries, err := ListDirectory(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "sub"}, names(entries))

	for _, e := range entries {
		if e.IsDir {
			assert.Zero(t, e.Size)
		} else {
			assert.Equal(t, int64(len("a.pdf")), e.Size)
		}
	}

	entries, err = ListDirectory(root, Options{IncludeHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", ".secret.pdf", "a.pdf", "sub"}, names(entries))
}

func TestListDirectoryMissing(t *testing.T) {
	_, err := ListDirectory(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWalkFiles(t *testing.T) {
	root := makeTree(t)

	var got []FileEntry
	require.NoError(t, WalkFiles(root, Options{}, func(e FileEntry) error {
		got = append(got, e)
		return nil
	}))
	assert.Equal(t, []string{"a.pdf", "b.png", "c.jpg"}, names(got))

	got = nil
	require.NoError(t, WalkFiles(root, Options{IncludeHidden: true}, func(e FileEntry) error {
		got = append(got, e)
		return nil
	}))
	assert.Len(t, got, 5)
}

func TestWalkFilesStops(t *testing.T) {
	root := makeTree(t)
	stop := errors.New("stop")

	calls := 0
	err := WalkFiles(root, Options{}, func(FileEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
