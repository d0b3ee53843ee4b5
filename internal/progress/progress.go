// Package progress reports byte progress for downloads, either as a
// terminal bar or as events on the bus.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/events"
)

// Reporter is the interface for reporting progress in both CLI and event modes.
// A total of -1 means the size is unknown.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress renders a progress bar. Unknown totals render as a spinner.
type CLIProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a CLI progress reporter writing to w (stderr if nil).
func NewCLIProgress(w io.Writer) *CLIProgress {
	if w == nil {
		w = os.Stderr
	}
	return &CLIProgress{w: w}
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	if total <= 0 {
		total = -1
	}
	w := p.w
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(constants.ProgressThrottle),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(constants.SpinnerType),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to current.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.w, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// EventProgress publishes progress on the event bus.
type EventProgress struct {
	eventBus *events.EventBus
	name     string

	mu    sync.Mutex
	total int64
	stage string
}

// NewEventProgress creates an event-bus reporter for the named download.
func NewEventProgress(eventBus *events.EventBus, name string) *EventProgress {
	return &EventProgress{eventBus: eventBus, name: name}
}

// Start records the total and publishes a zero-progress event.
func (p *EventProgress) Start(total int64, description string) {
	p.mu.Lock()
	p.total = total
	p.stage = description
	p.mu.Unlock()
	p.publish(0)
}

// Update publishes the current byte count.
func (p *EventProgress) Update(current int64) {
	p.publish(current)
}

// Finish publishes completion.
func (p *EventProgress) Finish() {
	p.mu.Lock()
	total := p.total
	p.mu.Unlock()
	p.publish(total)
}

// Error publishes an error event.
func (p *EventProgress) Error(err error) {
	if err != nil {
		p.eventBus.Publish(&events.ErrorEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventError, Time: time.Now()},
			Stage:     "download",
			Error:     err,
		})
	}
}

// SetDescription updates the stage description.
func (p *EventProgress) SetDescription(desc string) {
	p.mu.Lock()
	p.stage = desc
	p.mu.Unlock()
}

func (p *EventProgress) publish(current int64) {
	p.mu.Lock()
	total, stage := p.total, p.stage
	p.mu.Unlock()

	p.eventBus.Publish(&events.ProgressEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventProgress, Time: time.Now()},
		Name:      p.name,
		Stage:     stage,
		Current:   current,
		Total:     total,
	})
}

// Multi sends every call to each of its reporters in order.
type Multi []Reporter

func (m Multi) Start(total int64, description string) {
	for _, r := range m {
		r.Start(total, description)
	}
}

func (m Multi) Update(current int64) {
	for _, r := range m {
		r.Update(current)
	}
}

func (m Multi) Finish() {
	for _, r := range m {
		r.Finish()
	}
}

func (m Multi) Error(err error) {
	for _, r := range m {
		r.Error(err)
	}
}

func (m Multi) SetDescription(desc string) {
	for _, r := range m {
		r.SetDescription(desc)
	}
}

// NoOpProgress is a progress reporter that does nothing (for quiet output).
type NoOpProgress struct{}

func (NoOpProgress) Start(int64, string)   {}
func (NoOpProgress) Update(int64)          {}
func (NoOpProgress) Finish()               {}
func (NoOpProgress) Error(error)           {}
func (NoOpProgress) SetDescription(string) {}

// ProgressReader wraps an io.Reader to report progress.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewProgressReader creates a new progress-reporting reader.
func NewProgressReader(reader io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		reporter: reporter,
	}
}

// Read implements io.Reader interface with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		pr.reporter.Update(pr.current)
	}
	return n, err
}

// BytesRead returns how many bytes have passed through.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.current
}
