package opener

import (
	"context"
	"fmt"
	"io"
	"mime"
	nethttp "net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/minidrive/minidrive/internal/diskspace"
	"github.com/minidrive/minidrive/internal/logging"
	"github.com/minidrive/minidrive/internal/progress"
	"github.com/minidrive/minidrive/internal/util/buffers"
	"github.com/minidrive/minidrive/internal/util/paths"
	"github.com/minidrive/minidrive/internal/util/sanitize"
	"github.com/minidrive/minidrive/internal/validation"
)

// Source performs the authenticated GET. *api.Client implements it.
type Source interface {
	Fetch(ctx context.Context, rawURL string) (*nethttp.Response, error)
}

// Fetch acts as the browsing context itself: it downloads the resource
// and saves it under a directory. Existing files are never overwritten.
type Fetch struct {
	ctx         context.Context
	source      Source
	dir         string
	newReporter func(name string) progress.Reporter
	logger      *logging.Logger

	mu    sync.Mutex
	saved []string
}

// FetchOption configures a Fetch.
type FetchOption func(*Fetch)

// WithReporter sets the progress reporter factory. One reporter per file.
func WithReporter(f func(name string) progress.Reporter) FetchOption {
	return func(o *Fetch) { o.newReporter = f }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) FetchOption {
	return func(o *Fetch) { o.logger = logging.OrNop(l) }
}

// NewFetch returns a Fetch saving into dir. ctx bounds every download
// started through Open.
func NewFetch(ctx context.Context, source Source, dir string, opts ...FetchOption) *Fetch {
	f := &Fetch{
		ctx:         ctx,
		source:      source,
		dir:         dir,
		newReporter: func(string) progress.Reporter { return progress.NoOpProgress{} },
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open downloads url into the directory, naming the file from the
// response's Content-Disposition header.
func (f *Fetch) Open(url string) error {
	_, err := f.SaveAs(f.ctx, url, "")
	return err
}

// SaveAs downloads url to dest. An empty dest picks a name in the
// directory. Returns the path written.
func (f *Fetch) SaveAs(ctx context.Context, url, dest string) (string, error) {
	resp, err := f.source.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if dest == "" {
		dest = filepath.Join(f.dir, ResponseFilename(resp, url))
		if err := validation.ValidatePathInDirectory(dest, f.dir); err != nil {
			return "", err
		}
	}
	dest, err = paths.Unique(dest)
	if err != nil {
		return "", err
	}

	if err := diskspace.Check(dest, resp.ContentLength, diskspace.DefaultMargin); err != nil {
		return "", err
	}

	name := filepath.Base(dest)
	reporter := f.newReporter(name)
	reporter.Start(resp.ContentLength, name)

	if err := writeAtomic(dest, progress.NewProgressReader(resp.Body, reporter)); err != nil {
		reporter.Error(err)
		return "", err
	}
	reporter.Finish()

	f.mu.Lock()
	f.saved = append(f.saved, dest)
	f.mu.Unlock()

	f.logger.Info().Str("path", dest).Int64("bytes", resp.ContentLength).Msg("download saved")
	return dest, nil
}

// Saved returns the paths written so far, in order.
func (f *Fetch) Saved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.saved))
	copy(out, f.saved)
	return out
}

// ResponseFilename picks a local name from Content-Disposition, falling
// back to the last element of the URL path.
func ResponseFilename(resp *nethttp.Response, url string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := sanitize.Filename(params["filename"]); name != "" {
				return name
			}
		}
	}
	rawPath := url
	if u, err := neturl.Parse(url); err == nil {
		rawPath = u.Path
	}
	return "download-" + sanitize.Filename(path.Base(rawPath))
}

func writeAtomic(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".minidrive-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := buffers.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save %s: %w", dest, err)
	}
	return nil
}
