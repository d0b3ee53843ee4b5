package notify

import "sync"

// Entry is one recorded notice.
type Entry struct {
	Kind     string // "pending", "success", "error"
	Message  string
	HandleID string
}

// Recorder keeps every notice in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	open    map[string]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{open: make(map[string]bool)}
}

func (r *Recorder) Begin(msg string) Handle {
	h := newHandle(msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[h.ID] = true
	r.entries = append(r.entries, Entry{Kind: "pending", Message: msg, HandleID: h.ID})
	return h
}

func (r *Recorder) Resolve(h Handle, outcome Outcome, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open[h.ID] {
		return
	}
	delete(r.open, h.ID)
	r.entries = append(r.entries, Entry{Kind: outcome.String(), Message: msg, HandleID: h.ID})
}

func (r *Recorder) Success(msg string) {
	r.record(Entry{Kind: "success", Message: msg})
}

func (r *Recorder) Error(msg string) {
	r.record(Entry{Kind: "error", Message: msg})
}

func (r *Recorder) record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Pending returns how many handles are begun but not resolved.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// Reset forgets all entries and open handles.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.open = make(map[string]bool)
}
