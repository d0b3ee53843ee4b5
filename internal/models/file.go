package models

import (
	"strconv"
	"time"
)

// FileRecord represents one stored file as known to the client.
// The backend serializes an embedded ORM model, so ID and the timestamps
// arrive under their Go field names while the rest use snake_case tags.
type FileRecord struct {
	ID           uint      `json:"ID"`
	OriginalName string    `json:"original_name"`
	StorageName  string    `json:"storage_name,omitempty"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	UserID       uint      `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"CreatedAt,omitempty"`
	UpdatedAt    time.Time `json:"UpdatedAt,omitempty"`
}

// IDString returns the record ID in the form used by resource paths.
func (f FileRecord) IDString() string {
	return strconv.FormatUint(uint64(f.ID), 10)
}

// FileListResponse represents the response from the file list endpoint
type FileListResponse struct {
	Files []FileRecord `json:"files"`
}

// UploadResponse represents a successful upload response
type UploadResponse struct {
	Message string     `json:"message"`
	File    FileRecord `json:"file"`
}

// FileMetadata represents the response from the per-file metadata endpoint
type FileMetadata struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url"`
}

// ErrorResponse is the failure body shape used by the backend.
// Some auth endpoints use "message" instead of "error".
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the generic success body shape.
type MessageResponse struct {
	Message string `json:"message"`
}
