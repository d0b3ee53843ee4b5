// Package session implements the drive session controller.
//
// A Controller owns one file collection and the UI flags that go with it.
// Every change to that state goes through Refresh, Upload, the delete
// confirmation step, or the search and view setters. It never navigates:
// authentication failures come back as api.ErrAuthExpired and are published
// on the event bus for whichever frontend is listening.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/logging"
	"github.com/minidrive/minidrive/internal/models"
	"github.com/minidrive/minidrive/internal/notify"
	"github.com/minidrive/minidrive/internal/state"
)

// User-facing notices.
const (
	MsgLoadFailed    = "Failed to load files"
	MsgUploading     = "Uploading file..."
	MsgUploaded      = "File uploaded successfully"
	MsgUploadFailed  = "Upload failed"
	MsgDeleted       = "File deleted"
	MsgDeleteFailed  = "Delete failed"
	MsgNoMatches     = "No matches found"
	MsgEmpty         = "No files yet"
	MsgDeleteConfirm = "Are you sure you want to delete this file?"
)

var (
	// ErrFileTooLarge is returned when a selection exceeds the upload limit.
	ErrFileTooLarge = errors.New("file size too large")

	// ErrUnknownFile is returned when a delete names a file not in the collection.
	ErrUnknownFile = errors.New("file not in collection")

	// ErrPendingResolved is returned when a pending delete is confirmed or
	// cancelled a second time, or after a newer request replaced it.
	ErrPendingResolved = errors.New("delete already resolved")
)

// FileService is the slice of the storage backend the controller needs.
// *api.Client implements it.
type FileService interface {
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
	UploadFile(ctx context.Context, name string, content io.Reader) (*models.UploadResponse, error)
	DeleteFile(ctx context.Context, id uint) error
	DownloadURL(id uint) string
}

// SelectedFile is a file chosen for upload. Reset clears the selection
// so the same file can be chosen again.
type SelectedFile interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
	Reset()
}

// Opener hands a download URL to whatever acts as the browsing context.
type Opener interface {
	Open(url string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Config holds the controller's optional collaborators. Zero values are
// replaced with a fresh store, a Nop notifier and a Nop logger.
type Config struct {
	Store    *state.CollectionStore
	Notifier notify.Notifier
	Opener   Opener
	Logger   *logging.Logger
}

// Controller is the drive session controller. Safe for concurrent use.
type Controller struct {
	files    FileService
	store    *state.CollectionStore
	notifier notify.Notifier
	opener   Opener
	eventBus *events.EventBus
	logger   *logging.Logger

	mountOnce sync.Once
	mountErr  error

	mu      sync.Mutex
	pending *PendingDelete
}

// New creates a Controller. eventBus may be nil.
func New(files FileService, eventBus *events.EventBus, cfg Config) *Controller {
	if cfg.Store == nil {
		cfg.Store = state.NewCollectionStore(eventBus)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	return &Controller{
		files:    files,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		opener:   cfg.Opener,
		eventBus: eventBus,
		logger:   logging.OrNop(cfg.Logger).Named("session"),
	}
}

// Store returns the collection store for read access.
func (c *Controller) Store() *state.CollectionStore {
	return c.store
}

// Mount performs the initial sync. Only the first call fetches; later
// calls return the first call's result.
func (c *Controller) Mount(ctx context.Context) error {
	c.mountOnce.Do(func() {
		c.mountErr = c.Refresh(ctx)
	})
	return c.mountErr
}

// Refresh replaces the collection with the server's list.
// On failure the collection is left as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	files, err := c.files.ListFiles(ctx)
	if err != nil {
		if api.IsAuthExpired(err) {
			c.authExpired("list", err)
			return fmt.Errorf("failed to load files: %w", err)
		}
		if !errors.Is(err, context.Canceled) {
			c.notifier.Error(MsgLoadFailed)
		}
		c.logger.Warn().Err(err).Msg("list failed")
		c.publishError("list", err)
		return fmt.Errorf("failed to load files: %w", err)
	}

	c.store.Replace(files)
	c.logger.Debug().Int("count", len(files)).Msg("collection replaced")
	return nil
}

// Download hands the file's resource URL to the opener and returns it.
// No state changes and no notices.
func (c *Controller) Download(id uint) (string, error) {
	url := c.files.DownloadURL(id)
	if c.opener == nil {
		return url, nil
	}
	if err := c.opener.Open(url); err != nil {
		return url, fmt.Errorf("failed to open %s: %w", url, err)
	}
	return url, nil
}

// VisibleFiles returns the collection filtered by the current search query.
func (c *Controller) VisibleFiles() []models.FileRecord {
	return c.store.Visible()
}

// EmptyMessage describes an empty view, or returns "" if something is visible.
func (c *Controller) EmptyMessage() string {
	if c.store.Len() == 0 {
		return MsgEmpty
	}
	if len(c.store.Visible()) == 0 {
		return MsgNoMatches
	}
	return ""
}

// SetSearch updates the search query. Never touches the network.
func (c *Controller) SetSearch(query string) {
	c.store.SetSearch(query)
}

// SetViewMode switches between grid and list.
func (c *Controller) SetViewMode(mode state.ViewMode) {
	c.store.SetViewMode(mode)
}

// UI returns a snapshot of the session flags.
func (c *Controller) UI() state.UIState {
	return c.store.UI()
}

func (c *Controller) authExpired(stage string, err error) {
	c.logger.Info().Str("stage", stage).Err(err).Msg("session rejected by backend")
	if c.eventBus != nil {
		c.eventBus.PublishAuthExpired(stage, err)
	}
}

func (c *Controller) publishError(stage string, err error) {
	if c.eventBus != nil {
		c.eventBus.PublishLog(events.ErrorLevel, err.Error(), stage, err)
	}
}
