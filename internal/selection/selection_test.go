package selection

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"scan.png", true},
		{"doc.pdf", true},
		{"/a/b/Doc.Pdf", true},
		{"photo.jpeg", false},
		{"notes.txt", false},
		{"archive.pdf.zip", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.path))
		})
	}
}

func TestPick(t *testing.T) {
	path := writeFile(t, "report.pdf", []byte("hello pdf"))

	f, err := Pick(path)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", f.Name())
	assert.Equal(t, int64(9), f.Size())
	assert.Equal(t, path, f.Path())

	rc, err := f.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello pdf", string(data))
}

func TestPick_RejectsExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("x"))

	_, err := Pick(path)
	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestPick_Missing(t *testing.T) {
	_, err := Pick(filepath.Join(t.TempDir(), "gone.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPick_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "album.png")
	require.NoError(t, os.Mkdir(dir, 0755))

	_, err := Pick(dir)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	f, err := Pick(writeFile(t, "a.png", []byte("png")))
	require.NoError(t, err)

	f.Reset()
	assert.True(t, f.IsReset())
	_, err = f.Open()
	assert.ErrorIs(t, err, ErrNoSelection)

	// Size and name survive for reporting.
	assert.Equal(t, "a.png", f.Name())
	assert.Equal(t, int64(3), f.Size())
}

func TestCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.pdf", "B.PNG", "notes.txt", ".hidden.jpg", "sub/c.jpg", ".git/d.pdf"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	}

	names := func(recursive bool) []string {
		entries, err := Candidates(dir, recursive)
		require.NoError(t, err)
		var out []string
		for _, e := range entries {
			out = append(out, e.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a.pdf", "B.PNG"}, names(false))
	assert.ElementsMatch(t, []string{"a.pdf", "B.PNG", "c.jpg"}, names(true))

	_, err := Candidates(filepath.Join(dir, "missing"), false)
	assert.Error(t, err)
}
