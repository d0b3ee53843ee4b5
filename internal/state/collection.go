package state

import (
	"fmt"
	"strings"
	"sync"

	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/models"
	"github.com/minidrive/minidrive/internal/util/filter"
)

// ViewMode selects how the collection is displayed.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode accepts "grid" or "list" in any case.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewGrid:
		return ViewGrid, nil
	case ViewList:
		return ViewList, nil
	}
	return "", fmt.Errorf("unknown view mode %q (want grid or list)", s)
}

// UIState is a snapshot of the ephemeral session flags.
type UIState struct {
	Loading     bool
	Uploading   bool
	ViewMode    ViewMode
	SearchQuery string
}

// CollectionStore holds the files as of the last successful list, minus
// local deletions, plus the UI flags derived views depend on.
// The slice keeps server order. Thread-safe for concurrent access.
type CollectionStore struct {
	eventBus *events.EventBus

	items     []models.FileRecord
	loading   bool
	uploading bool
	viewMode  ViewMode
	search    string

	mu sync.RWMutex
}

// NewCollectionStore creates an empty store in grid mode. eventBus may be nil.
func NewCollectionStore(eventBus *events.EventBus) *CollectionStore {
	return &CollectionStore{
		eventBus: eventBus,
		items:    make([]models.FileRecord, 0),
		viewMode: ViewGrid,
	}
}

// Items returns a copy of the collection.
func (s *CollectionStore) Items() []models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *CollectionStore) copyLocked() []models.FileRecord {
	result := make([]models.FileRecord, len(s.items))
	copy(result, s.items)
	return result
}

// Len returns the number of records.
func (s *CollectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the record with id.
func (s *CollectionStore) Get(id uint) (models.FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.items {
		if f.ID == id {
			return f, true
		}
	}
	return models.FileRecord{}, false
}

// Replace swaps in a new collection wholesale. nil becomes empty.
func (s *CollectionStore) Replace(files []models.FileRecord) {
	items := make([]models.FileRecord, len(files))
	copy(items, files)

	s.mu.Lock()
	s.items = items
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.publish(NewCollectionChangedEvent(ReasonReplace, snapshot))
}

// Remove drops every record with id. Reports whether anything was removed.
func (s *CollectionStore) Remove(id uint) bool {
	s.mu.Lock()
	kept := make([]models.FileRecord, 0, len(s.items))
	for _, f := range s.items {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	removed := len(kept) != len(s.items)
	s.items = kept
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if removed {
		s.publish(NewCollectionChangedEvent(ReasonRemove, snapshot))
	}
	return removed
}

// SetLoading updates the loading flag and publishes an event.
func (s *CollectionStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()

	s.publish(NewLoadingChangedEvent(loading))
}

// IsLoading returns whether a list fetch is in flight.
func (s *CollectionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// TryBeginUpload sets the uploading flag if it is clear.
// Returns false when an upload is already in flight.
func (s *CollectionStore) TryBeginUpload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploading {
		return false
	}
	s.uploading = true
	return true
}

// EndUpload clears the uploading flag.
func (s *CollectionStore) EndUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false
}

// IsUploading returns whether an upload is in flight.
func (s *CollectionStore) IsUploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

// SetSearch updates the search query. No network, no change to the collection.
func (s *CollectionStore) SetSearch(query string) {
	s.mu.Lock()
	s.search = query
	mode := s.viewMode
	s.mu.Unlock()

	s.publish(NewViewChangedEvent(mode, query))
}

// SetViewMode switches between grid and list.
func (s *CollectionStore) SetViewMode(mode ViewMode) {
	s.mu.Lock()
	s.viewMode = mode
	query := s.search
	s.mu.Unlock()

	s.publish(NewViewChangedEvent(mode, query))
}

// UI returns a snapshot of the session flags.
func (s *CollectionStore) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return UIState{
		Loading:     s.loading,
		Uploading:   s.uploading,
		ViewMode:    s.viewMode,
		SearchQuery: s.search,
	}
}

// Visible returns the records whose name contains the search query,
// ignoring case, in collection order. An empty query returns everything.
func (s *CollectionStore) Visible() []models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.BySearch(s.items, s.search)
}

func (s *CollectionStore) publish(e events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(e)
	}
}
