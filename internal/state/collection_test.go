package state

import (
	"sync"
	"testing"
	"time"

	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/models"
)

func records(names ...string) []models.FileRecord {
	out := make([]models.FileRecord, len(names))
	for i, n := range names {
		out[i] = models.FileRecord{ID: uint(i + 1), OriginalName: n, Size: int64(10 * (i + 1))}
	}
	return out
}

func TestNewCollectionStore(t *testing.T) {
	s := NewCollectionStore(nil)

	if s.Len() != 0 {
		t.Error("initial collection should be empty")
	}
	if s.Items() == nil {
		t.Error("Items should never be nil")
	}
	ui := s.UI()
	if ui.Loading || ui.Uploading || ui.SearchQuery != "" || ui.ViewMode != ViewGrid {
		t.Errorf("unexpected initial UI state: %+v", ui)
	}
}

func TestReplace_PreservesServerOrder(t *testing.T) {
	s := NewCollectionStore(nil)
	s.Replace(records("zeta.png", "alpha.pdf", "mid.jpg"))

	got := s.Items()
	want := []string{"zeta.png", "alpha.pdf", "mid.jpg"}
	for i, name := range want {
		if got[i].OriginalName != name {
			t.Errorf("item %d = %q, want %q", i, got[i].OriginalName, name)
		}
	}

	s.Replace(nil)
	if items := s.Items(); items == nil || len(items) != 0 {
		t.Errorf("Replace(nil) should leave an empty, non-nil collection, got %#v", items)
	}
}

func TestReplace_CopiesInput(t *testing.T) {
	s := NewCollectionStore(nil)
	in := records("a.png")
	s.Replace(in)
	in[0].OriginalName = "mutated"

	if s.Items()[0].OriginalName != "a.png" {
		t.Error("store should not alias the caller's slice")
	}
}

func TestRemove(t *testing.T) {
	s := NewCollectionStore(nil)
	s.Replace(records("a.png", "b.png", "c.png"))

	if !s.Remove(2) {
		t.Fatal("Remove(2) should report a removal")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, ok := s.Get(2); ok {
		t.Error("record 2 should be gone")
	}
	if s.Remove(2) {
		t.Error("removing an absent id should report false")
	}
	if s.Len() != 2 {
		t.Error("removing an absent id should not change the collection")
	}
}

func TestVisible_Search(t *testing.T) {
	s := NewCollectionStore(nil)
	s.Replace(records("Report.PDF", "photo.png", "report-draft.pdf"))

	s.SetSearch("report")
	got := s.Visible()
	if len(got) != 2 || got[0].OriginalName != "Report.PDF" || got[1].OriginalName != "report-draft.pdf" {
		t.Errorf("Visible() = %+v", got)
	}
	if s.Len() != 3 {
		t.Error("search must not change the collection")
	}

	s.SetSearch("nothing-matches")
	if got := s.Visible(); got == nil || len(got) != 0 {
		t.Errorf("expected empty, non-nil slice, got %#v", got)
	}

	s.SetSearch("")
	if len(s.Visible()) != 3 {
		t.Error("empty search should show everything")
	}
}

func TestUploadGuard(t *testing.T) {
	s := NewCollectionStore(nil)

	if !s.TryBeginUpload() {
		t.Fatal("first TryBeginUpload should succeed")
	}
	if s.TryBeginUpload() {
		t.Error("second TryBeginUpload should fail while in flight")
	}
	if !s.UI().Uploading {
		t.Error("Uploading flag should be set")
	}
	s.EndUpload()
	if s.IsUploading() {
		t.Error("EndUpload should clear the flag")
	}
}

func TestUploadGuard_Concurrent(t *testing.T) {
	s := NewCollectionStore(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBeginUpload() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestParseViewMode(t *testing.T) {
	for in, want := range map[string]ViewMode{"grid": ViewGrid, "LIST": ViewList, " list ": ViewList} {
		got, err := ParseViewMode(in)
		if err != nil || got != want {
			t.Errorf("ParseViewMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseViewMode("table"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEvents(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	all := bus.SubscribeAll()

	s := NewCollectionStore(bus)
	s.SetLoading(true)
	s.Replace(records("a.png"))
	s.Remove(1)
	s.Remove(1) // no-op, no event
	s.SetViewMode(ViewList)

	want := []events.EventType{EventLoadingChanged, EventCollectionChanged, EventCollectionChanged, EventViewChanged}
	for i, wt := range want {
		select {
		case e := <-all:
			if e.Type() != wt {
				t.Errorf("event %d = %s, want %s", i, e.Type(), wt)
			}
			if ce, ok := e.(*CollectionChangedEvent); ok && i == 2 {
				if ce.Reason != ReasonRemove || len(ce.Items) != 0 {
					t.Errorf("remove event = %+v", ce)
				}
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	select {
	case e := <-all:
		t.Errorf("unexpected extra event %s", e.Type())
	default:
	}
}
