// Package opener hands download URLs to a browsing context: the system
// browser, a local fetch that saves to disk, or plain output.
package opener

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/minidrive/minidrive/internal/logging"
)

// Browser opens URLs with the operating system's default handler.
type Browser struct {
	logger *logging.Logger
	goos   string
	start  func(cmd *exec.Cmd) error
}

// NewBrowser returns a Browser for the running OS.
func NewBrowser(logger *logging.Logger) *Browser {
	return &Browser{
		logger: logging.OrNop(logger),
		goos:   runtime.GOOS,
		start:  func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open launches the handler and returns without waiting for it.
func (b *Browser) Open(url string) error {
	name, args := Command(b.goos, url)
	cmd := exec.Command(name, args...)
	b.logger.Debug().Str("cmd", name).Str("url", url).Msg("opening in browser")
	if err := b.start(cmd); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	return nil
}

// Command returns the program and arguments that open url on goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Printer writes the URL instead of opening it.
type Printer struct {
	W io.Writer
}

func (p Printer) Open(url string) error {
	_, err := fmt.Fprintln(p.W, url)
	return err
}
