package constants

import (
	"time"
)

// Upload admission policy
const (
	// MaxUploadSize - largest file accepted for upload (5 MiB).
	// Checked locally before any network call; the backend enforces the same limit.
	MaxUploadSize = 5 * 1024 * 1024

	// MaxUploadSizeLabel is the human label used in the rejection notice.
	MaxUploadSizeLabel = "5MB"

	// UploadFormField is the multipart field that carries the file.
	UploadFormField = "file"

	// CopyBufferSize - size of pooled buffers used to stream file bodies
	CopyBufferSize = 64 * 1024
)

// AllowedUploadExtensions lists the extensions offered by the file picker.
// Advisory only: the backend is the authority on acceptance.
var AllowedUploadExtensions = []string{".jpg", ".png", ".pdf"}

// Session cookie
const (
	// SessionCookieName is the cookie set by the auth service on login.
	SessionCookieName = "Authorization"
)

// Service endpoints
const (
	PathLanding       = "/"
	PathSignup        = "/signup"
	PathLogin         = "/login"
	PathLogout        = "/logout"
	PathValidate      = "/validate"
	PathFilesList     = "/files/list"
	PathFilesUpload   = "/files/upload"
	PathFilesDelete   = "/files/delete/"
	PathFilesDownload = "/files/download/"
	PathFilesInfo     = "/files/"
)

// DefaultBaseURL is the backend address used when nothing else is configured.
const DefaultBaseURL = "http://localhost:3000"

// Retry configuration (read-only requests)
const (
	// MaxRetries - retry attempts for idempotent reads
	MaxRetries = 3

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (5s)
	RetryMaxDelay = 5 * time.Second
)

// Request pacing defaults
const (
	DefaultRequestsPerSecond = 10.0
	DefaultRequestBurst      = 20
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios
	EventBusMaxBuffer = 5000
)

// HTTP transport tuning
const (
	HTTPDialTimeout           = 30 * time.Second
	HTTPDialKeepAlive         = 30 * time.Second
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 15 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second

	// ProxyWarmupTimeout bounds the optional proxy warmup request.
	ProxyWarmupTimeout = 15 * time.Second
)

// UI
const (
	// SpinnerType is the progressbar spinner used for in-progress notices.
	SpinnerType = 14

	// ProgressThrottle - minimum interval between progress bar redraws
	ProgressThrottle = 100 * time.Millisecond

	// GridColumns is the number of cells per row in grid view.
	GridColumns = 3

	// GridCellWidth is the display width of one grid cell.
	GridCellWidth = 28
)
