package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/minidrive/minidrive/internal/constants"
)

const (
	successMark = "✓"
	failureMark = "✗"
)

// Console writes notices to a terminal. On a TTY a pending notice is a
// spinner line that Resolve clears and overwrites with the outcome; otherwise
// plain lines are written.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	tty    bool
	active map[string]*progressbar.ProgressBar
}

// NewConsole creates a Console on w. Spinners are used only when w is a terminal.
func NewConsole(w io.Writer) *Console {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Console{
		w:      w,
		tty:    tty,
		active: make(map[string]*progressbar.ProgressBar),
	}
}

// NewStderrConsole creates a Console on stderr.
func NewStderrConsole() *Console {
	return NewConsole(os.Stderr)
}

func (c *Console) Begin(msg string) Handle {
	h := newHandle(msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tty {
		fmt.Fprintf(c.w, "%s\n", msg)
		c.active[h.ID] = nil
		return h
	}

	c.active[h.ID] = progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription(msg),
		progressbar.OptionSpinnerType(constants.SpinnerType),
		progressbar.OptionSetSpinnerChangeInterval(constants.ProgressThrottle),
		progressbar.OptionThrottle(constants.ProgressThrottle),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	return h
}

func (c *Console) Resolve(h Handle, outcome Outcome, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bar, ok := c.active[h.ID]
	if !ok {
		return
	}
	delete(c.active, h.ID)

	if bar != nil {
		_ = bar.Finish()
	}
	c.line(outcome, msg)
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line(Success, msg)
}

func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line(Failure, msg)
}

func (c *Console) line(outcome Outcome, msg string) {
	mark := successMark
	if outcome == Failure {
		mark = failureMark
	}
	fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}
