package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/minidrive/minidrive/internal/config"
	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/http"
	"github.com/minidrive/minidrive/internal/logging"
	"github.com/minidrive/minidrive/internal/models"
	"github.com/minidrive/minidrive/internal/util/buffers"
)

// maxErrorBody caps how much of a failure body is read for the error message
const maxErrorBody = 64 * 1024

// Client talks to the Mini Drive backend.
//
// Two HTTP clients share one transport: reads (list, metadata, validate,
// landing, download fetch) go through the retrying client; mutations (upload,
// delete, login, signup, logout) are sent exactly once.
type Client struct {
	readClient  *nethttp.Client
	writeClient *nethttp.Client
	config      *config.Config
	baseURL     string
	session     SessionStore
	logger      *logging.Logger
}

// NewClient creates a new API client. A nil session gets an empty MemorySession.
func NewClient(cfg *config.Config, session SessionStore, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is empty")
	}

	logger = logging.OrNop(logger)

	base, err := http.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	if session == nil {
		session = NewMemorySession("")
	}

	return &Client{
		readClient:  http.NewRetryingClient(base, http.DefaultRetryConfig(), logger),
		writeClient: base,
		config:      cfg,
		baseURL:     cfg.NormalizedBaseURL(),
		session:     session,
		logger:      logger,
	}, nil
}

// GetConfig returns the configuration used by this API client
func (c *Client) GetConfig() *config.Config {
	return c.config
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session store backing this client.
func (c *Client) Session() SessionStore {
	return c.session
}

// HasSession reports whether a session cookie is available.
func (c *Client) HasSession() bool {
	return c.session.Token() != ""
}

// newRequest builds a request against the backend with the session cookie attached.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*nethttp.Request, error) {
	req, err := nethttp.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// The backend marks its cookie Secure, which a cookie jar would withhold
	// on a plain-http origin, so it is attached by hand.
	if token := c.session.Token(); token != "" {
		req.AddCookie(&nethttp.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	return req, nil
}

// doJSON sends an optional JSON body and returns the response.
func (c *Client) doJSON(ctx context.Context, client *nethttp.Client, method, path string, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := c.newRequest(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(client, req)
}

func (c *Client) send(client *nethttp.Client, req *nethttp.Request) (*nethttp.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("Request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("Request completed")
	return resp, nil
}

// checkResponse converts a non-2xx response into a *StatusError.
// The body is left unread on success.
func checkResponse(resp *nethttp.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	serr := &StatusError{Op: op, StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		serr.Message = body.Error
		serr.Detail = body.Message
	} else if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "<") {
		serr.Detail = text
	}

	return serr
}

func decodeJSON(resp *nethttp.Response, v interface{}, what string) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return nil
}

// ListFiles returns the user's files in server order. Never returns a nil slice on success.
func (c *Client) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := c.doJSON(ctx, c.readClient, nethttp.MethodGet, constants.PathFilesList, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "list files"); err != nil {
		return nil, err
	}

	var result models.FileListResponse
	if err := decodeJSON(resp, &result, "file list"); err != nil {
		return nil, err
	}
	if result.Files == nil {
		result.Files = []models.FileRecord{}
	}
	return result.Files, nil
}

// UploadFile sends a single file as multipart form field "file".
// The payload is buffered so the request carries a Content-Length.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader) (*models.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(constants.UploadFormField, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := buffers.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := c.newRequest(ctx, nethttp.MethodPost, c.baseURL+constants.PathFilesUpload, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(c.writeClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "upload"); err != nil {
		return nil, err
	}

	var result models.UploadResponse
	if err := decodeJSON(resp, &result, "upload response"); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteFile removes a file by ID.
func (c *Client) DeleteFile(ctx context.Context, id uint) error {
	resp, err := c.doJSON(ctx, c.writeClient, nethttp.MethodDelete, constants.PathFilesDelete+formatID(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkResponse(resp, "delete")
}

// GetFileMetadata returns the metadata view of one file.
func (c *Client) GetFileMetadata(ctx context.Context, id uint) (*models.FileMetadata, error) {
	resp, err := c.doJSON(ctx, c.readClient, nethttp.MethodGet, constants.PathFilesInfo+formatID(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "file info"); err != nil {
		return nil, err
	}

	var meta models.FileMetadata
	if err := decodeJSON(resp, &meta, "file metadata"); err != nil {
		return nil, err
	}
	return &meta, nil
}

// DownloadURL returns the resource URL for a file. No request is made.
func (c *Client) DownloadURL(id uint) string {
	return c.baseURL + constants.PathFilesDownload + formatID(id)
}

// Fetch performs an authenticated GET of rawURL and returns the open response.
// The caller must close the body. Non-2xx responses are returned as errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*nethttp.Response, error) {
	req, err := c.newRequest(ctx, nethttp.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Del("Accept")

	resp, err := c.send(c.readClient, req)
	if err != nil {
		return nil, err
	}

	if err := checkResponse(resp, "download"); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
