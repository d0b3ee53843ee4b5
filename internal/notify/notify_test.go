package notify

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/minidrive/minidrive/internal/events"
)

func TestConsole_NonTTYLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	h := c.Begin("Uploading file...")
	c.Resolve(h, Success, "File uploaded successfully")
	c.Error("Delete failed")

	want := "Uploading file...\n✓ File uploaded successfully\n✗ Delete failed\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConsole_ResolveOnce(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	h := c.Begin("Uploading file...")
	c.Resolve(h, Failure, "Upload failed")
	c.Resolve(h, Success, "File uploaded successfully")
	c.Resolve(Handle{ID: "never-begun"}, Success, "ignored")

	want := "Uploading file...\n✗ Upload failed\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConsole_ResolvedHandlesAreReleased(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	for i := 0; i < 100; i++ {
		h := c.Begin("Uploading file...")
		c.Resolve(h, Success, "File uploaded successfully")
	}
	pending := c.Begin("Loading...")

	c.mu.Lock()
	n := len(c.active)
	_, ok := c.active[pending.ID]
	c.mu.Unlock()
	if n != 1 || !ok {
		t.Errorf("active handles = %d (pending tracked: %v), want only the pending one", n, ok)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	h := r.Begin("Uploading file...")
	if r.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", r.Pending())
	}
	r.Resolve(h, Failure, "Invalid file type")
	r.Resolve(h, Success, "late")
	r.Success("File deleted")

	got := r.Entries()
	want := []Entry{
		{Kind: "pending", Message: "Uploading file...", HandleID: h.ID},
		{Kind: "error", Message: "Invalid file type", HandleID: h.ID},
		{Kind: "success", Message: "File deleted"},
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if r.Pending() != 0 {
		t.Errorf("pending = %d, want 0", r.Pending())
	}

	r.Reset()
	if len(r.Entries()) != 0 {
		t.Error("Reset should clear entries")
	}
}

func TestHandlesAreUnique(t *testing.T) {
	r := NewRecorder()
	a := r.Begin("x")
	b := r.Begin("x")
	if a.ID == b.ID || a.ID == "" {
		t.Errorf("handle IDs should be unique and non-empty: %q %q", a.ID, b.ID)
	}
}

type sent struct{ title, message string }

func TestDesktop_ForwardsTerminalOutcomes(t *testing.T) {
	rec := NewRecorder()
	d := NewDesktop(rec, nil)

	var notified, alerted []sent
	d.notify = func(title, message string) error {
		notified = append(notified, sent{title, message})
		return nil
	}
	d.alert = func(title, message string) error {
		alerted = append(alerted, sent{title, message})
		return errors.New("alerts unsupported")
	}

	h := d.Begin("Uploading file...")
	if len(notified)+len(alerted) != 0 {
		t.Fatal("pending notices should not reach the desktop")
	}

	d.Resolve(h, Success, "File uploaded successfully")
	d.Error("Delete failed")

	if len(alerted) != 1 || alerted[0].message != "Delete failed" {
		t.Errorf("alerted = %+v", alerted)
	}
	// Alert failed, so the error falls back to a regular notice
	if len(notified) != 2 || notified[0].message != "File uploaded successfully" || notified[1].message != "Delete failed" {
		t.Errorf("notified = %+v", notified)
	}
	if notified[0].title != desktopTitle {
		t.Errorf("title = %q, want %q", notified[0].title, desktopTitle)
	}
	if len(rec.Entries()) != 3 {
		t.Errorf("inner notifier should see every call, got %+v", rec.Entries())
	}
}

func TestWithEvents(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventNotification)

	p := WithEvents(NewRecorder(), bus)
	h := p.Begin("Uploading file...")
	p.Resolve(h, Success, "File uploaded successfully")

	for _, wantKind := range []string{"pending", "success"} {
		select {
		case e := <-ch:
			ne := e.(*events.NotificationEvent)
			if ne.Kind != wantKind || ne.HandleID != h.ID {
				t.Errorf("event = %+v, want kind %s for handle %s", ne, wantKind, h.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for notification event")
		}
	}
}
