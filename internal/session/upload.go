package session

import (
	"context"
	"fmt"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/notify"
)

// UploadResult says what Upload did.
type UploadResult int

const (
	// UploadDone means the backend accepted the file.
	UploadDone UploadResult = iota
	// UploadSkipped means another upload was in flight; nothing happened.
	UploadSkipped
	// UploadRejected means the file failed local admission.
	UploadRejected
	// UploadFailed means the backend or transport refused the upload.
	UploadFailed
)

func (r UploadResult) String() string {
	switch r {
	case UploadDone:
		return "done"
	case UploadSkipped:
		return "skipped"
	case UploadRejected:
		return "rejected"
	case UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Upload sends file to the backend and, on success, refreshes the
// collection from the server. The extension is not checked here.
//
// A second call while one is in flight returns UploadSkipped and touches
// nothing. Otherwise the selection is reset on every exit path.
// A refresh failure after a successful upload is returned with UploadDone.
func (c *Controller) Upload(ctx context.Context, file SelectedFile) (UploadResult, error) {
	if c.store.IsUploading() {
		return UploadSkipped, nil
	}

	if file.Size() > constants.MaxUploadSize {
		defer file.Reset()
		c.notifier.Error(fmt.Sprintf("File size too large (max %s)", constants.MaxUploadSizeLabel))
		c.logger.Debug().Str("name", file.Name()).Int64("size", file.Size()).Msg("upload rejected locally")
		return UploadRejected, fmt.Errorf("%w: %s is %d bytes (max %s)",
			ErrFileTooLarge, file.Name(), file.Size(), constants.MaxUploadSizeLabel)
	}

	if !c.store.TryBeginUpload() {
		return UploadSkipped, nil
	}

	if err := c.send(ctx, file); err != nil {
		return UploadFailed, err
	}

	if err := c.Refresh(ctx); err != nil {
		return UploadDone, fmt.Errorf("refresh after upload: %w", err)
	}
	return UploadDone, nil
}

// send runs with the uploading flag held and always releases it.
func (c *Controller) send(ctx context.Context, file SelectedFile) error {
	name, size := file.Name(), file.Size()

	defer c.store.EndUpload()
	defer file.Reset()
	c.publishUploadState(name, size, true)
	defer c.publishUploadState(name, size, false)

	h := c.notifier.Begin(MsgUploading)

	rc, err := file.Open()
	if err != nil {
		c.notifier.Resolve(h, notify.Failure, MsgUploadFailed)
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	defer rc.Close()

	resp, err := c.files.UploadFile(ctx, name, rc)
	if err != nil {
		c.notifier.Resolve(h, notify.Failure, api.MessageOr(err, MsgUploadFailed))
		if api.IsAuthExpired(err) {
			c.authExpired("upload", err)
		} else {
			c.logger.Warn().Str("name", name).Err(err).Msg("upload failed")
			c.publishError("upload", err)
		}
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}

	c.notifier.Resolve(h, notify.Success, MsgUploaded)
	c.logger.Info().Str("name", name).Uint("id", resp.File.ID).Msg("upload accepted")
	return nil
}

func (c *Controller) publishUploadState(name string, size int64, uploading bool) {
	if c.eventBus != nil {
		c.eventBus.PublishUploadState(name, size, uploading)
	}
}
