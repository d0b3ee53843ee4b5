package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/models"
)

// PendingDelete is a delete waiting for the user's answer.
// Exactly one of Confirm or Cancel takes effect.
type PendingDelete struct {
	File models.FileRecord

	c        *Controller
	mu       sync.Mutex
	resolved bool
}

// RequestDelete opens the confirmation step for id. No network.
// A newer request supersedes any earlier one still pending.
func (c *Controller) RequestDelete(id uint) (*PendingDelete, error) {
	rec, ok := c.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFile, id)
	}

	p := &PendingDelete{File: rec, c: c}

	c.mu.Lock()
	prev := c.pending
	c.pending = p
	c.mu.Unlock()

	if prev != nil {
		prev.claim()
	}

	if c.eventBus != nil {
		c.eventBus.Publish(&events.DeletePromptEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventDeletePrompt, Time: time.Now()},
			FileID:    rec.ID,
			FileName:  rec.OriginalName,
		})
	}
	return p, nil
}

// PendingDelete returns the delete awaiting confirmation, or nil.
func (c *Controller) PendingDelete() *PendingDelete {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// DeleteFile asks confirm and deletes id if the answer is yes.
// A declined confirmation returns nil with no network call and no notice.
func (c *Controller) DeleteFile(ctx context.Context, id uint, confirm Confirmer) error {
	p, err := c.RequestDelete(id)
	if err != nil {
		return err
	}
	if !confirm.Confirm(MsgDeleteConfirm) {
		return p.Cancel()
	}
	return p.Confirm(ctx)
}

// Cancel abandons the delete.
func (p *PendingDelete) Cancel() error {
	if !p.claim() {
		return ErrPendingResolved
	}
	p.c.clearPending(p)
	return nil
}

// Confirm issues the delete. On success the record is dropped from the
// collection locally; on any failure the collection is unchanged.
func (p *PendingDelete) Confirm(ctx context.Context) error {
	if !p.claim() {
		return ErrPendingResolved
	}
	c := p.c
	c.clearPending(p)

	id := p.File.ID
	if err := c.files.DeleteFile(ctx, id); err != nil {
		if api.IsAuthExpired(err) {
			c.authExpired("delete", err)
		} else {
			c.notifier.Error(MsgDeleteFailed)
			c.logger.Warn().Uint("id", id).Err(err).Msg("delete failed")
			c.publishError("delete", err)
		}
		return fmt.Errorf("failed to delete file %d: %w", id, err)
	}

	c.store.Remove(id)
	c.notifier.Success(MsgDeleted)
	c.logger.Info().Uint("id", id).Str("name", p.File.OriginalName).Msg("file deleted")
	return nil
}

// claim marks p resolved and reports whether this call did it.
func (p *PendingDelete) claim() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return false
	}
	p.resolved = true
	return true
}

func (c *Controller) clearPending(p *PendingDelete) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == p {
		c.pending = nil
	}
}
