package opener

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/config"
	"github.com/minidrive/minidrive/internal/progress"
	"github.com/minidrive/minidrive/internal/testserver"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"linux", "xdg-open", []string{"http://x/files/download/1"}},
		{"freebsd", "xdg-open", []string{"http://x/files/download/1"}},
		{"darwin", "open", []string{"http://x/files/download/1"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "http://x/files/download/1"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := Command(tt.goos, "http://x/files/download/1")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBrowser_Open(t *testing.T) {
	var got []string
	b := NewBrowser(nil)
	b.goos = "linux"
	b.start = func(cmd *exec.Cmd) error {
		got = cmd.Args
		return nil
	}

	require.NoError(t, b.Open("http://localhost:3000/files/download/7"))
	assert.Equal(t, []string{"xdg-open", "http://localhost:3000/files/download/7"}, got)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Printer{W: &buf}.Open("http://x/files/download/2"))
	assert.Equal(t, "http://x/files/download/2\n", buf.String())
}

type recordingReporter struct {
	progress.NoOpProgress
	total    int64
	last     int64
	finished bool
}

func (r *recordingReporter) Start(total int64, _ string) { r.total = total }
func (r *recordingReporter) Update(current int64)        { r.last = current }
func (r *recordingReporter) Finish()                     { r.finished = true }

func fetchFixture(t *testing.T) (*testserver.Server, *api.Client) {
	t.Helper()
	srv, ts := testserver.Start(t)
	srv.CreateUser("ada", "ada@example.com", "pw")

	cfg := config.NewConfig()
	cfg.BaseURL = ts.URL
	client, err := api.NewClient(cfg, api.NewMemorySession(srv.Token("ada@example.com", time.Hour)), nil)
	require.NoError(t, err)
	return srv, client
}

func TestFetch_SavesWithServerName(t *testing.T) {
	srv, client := fetchFixture(t)
	rec := srv.SeedFile("ada@example.com", "holiday photo.png", []byte("PNGDATA"))
	dir := t.TempDir()

	reporter := &recordingReporter{}
	f := NewFetch(context.Background(), client, dir, WithReporter(func(string) progress.Reporter { return reporter }))

	require.NoError(t, f.Open(client.DownloadURL(rec.ID)))

	want := filepath.Join(dir, "holiday photo.png")
	assert.Equal(t, []string{want}, f.Saved())
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))
	assert.Equal(t, int64(7), reporter.last)
	assert.True(t, reporter.finished)
}

func TestFetch_NeverOverwrites(t *testing.T) {
	srv, client := fetchFixture(t)
	rec := srv.SeedFile("ada@example.com", "a.pdf", []byte("new"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("old"), 0644))

	f := NewFetch(context.Background(), client, dir)
	require.NoError(t, f.Open(client.DownloadURL(rec.ID)))

	old, _ := os.ReadFile(filepath.Join(dir, "a.pdf"))
	assert.Equal(t, "old", string(old))
	fresh, err := os.ReadFile(filepath.Join(dir, "a_1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(fresh))
}

func TestFetch_SaveAs(t *testing.T) {
	srv, client := fetchFixture(t)
	rec := srv.SeedFile("ada@example.com", "a.pdf", []byte("bytes"))
	dest := filepath.Join(t.TempDir(), "nested", "renamed.pdf")

	f := NewFetch(context.Background(), client, "")
	got, err := f.SaveAs(context.Background(), client.DownloadURL(rec.ID), dest)

	require.NoError(t, err)
	assert.Equal(t, dest, got)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}

func TestFetch_NotFound(t *testing.T) {
	_, client := fetchFixture(t)
	dir := t.TempDir()

	f := NewFetch(context.Background(), client, dir)
	err := f.Open(client.DownloadURL(404))

	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "no partial files left behind")
}

func TestResponseFilename(t *testing.T) {
	tests := []struct {
		name   string
		header string
		url    string
		want   string
	}{
		{"quoted", `attachment; filename="scan.pdf"`, "http://x/files/download/1", "scan.pdf"},
		{"traversal", `attachment; filename="../../etc/passwd"`, "http://x/files/download/1", "passwd"},
		{"missing header", "", "http://x/files/download/12", "download-12"},
		{"malformed header", "attachment; filename", "http://x/files/download/3", "download-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Content-Disposition", tt.header)
			}
			assert.Equal(t, tt.want, ResponseFilename(resp, tt.url))
		})
	}
}
