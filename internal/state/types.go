// Package state provides observable state containers for minidrive.
// These containers emit events when state changes, allowing any frontend
// to subscribe and update its UI accordingly.
package state

import (
	"time"

	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/models"
)

// State event types
const (
	EventCollectionChanged events.EventType = "collection_changed"
	EventLoadingChanged    events.EventType = "loading_changed"
	EventViewChanged       events.EventType = "view_changed"
)

// Reasons carried by CollectionChangedEvent
const (
	ReasonReplace = "replace"
	ReasonRemove  = "remove"
)

// CollectionChangedEvent is published when the collection is replaced or shrunk.
type CollectionChangedEvent struct {
	events.BaseEvent
	Items  []models.FileRecord
	Reason string // ReasonReplace or ReasonRemove
}

// LoadingChangedEvent is published when a list fetch starts or ends.
type LoadingChangedEvent struct {
	events.BaseEvent
	Loading bool
}

// ViewChangedEvent is published when the search query or view mode changes.
type ViewChangedEvent struct {
	events.BaseEvent
	ViewMode    ViewMode
	SearchQuery string
}

// NewCollectionChangedEvent creates a new CollectionChangedEvent.
func NewCollectionChangedEvent(reason string, items []models.FileRecord) *CollectionChangedEvent {
	return &CollectionChangedEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventCollectionChanged,
			Time:      time.Now(),
		},
		Items:  items,
		Reason: reason,
	}
}

// NewLoadingChangedEvent creates a new LoadingChangedEvent.
func NewLoadingChangedEvent(loading bool) *LoadingChangedEvent {
	return &LoadingChangedEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventLoadingChanged,
			Time:      time.Now(),
		},
		Loading: loading,
	}
}

// NewViewChangedEvent creates a new ViewChangedEvent.
func NewViewChangedEvent(mode ViewMode, query string) *ViewChangedEvent {
	return &ViewChangedEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventViewChanged,
			Time:      time.Now(),
		},
		ViewMode:    mode,
		SearchQuery: query,
	}
}
