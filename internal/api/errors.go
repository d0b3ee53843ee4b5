// Package api provides the client for the Mini Drive file and auth services.
package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
)

// ErrAuthExpired indicates the backend rejected the session (401 or 403).
// Requests failing this way are never retried; the caller should send the
// user back to login.
var ErrAuthExpired = errors.New("session expired or not authorized")

// ErrNotFound indicates the backend has no such resource for this user.
var ErrNotFound = errors.New("not found")

// ErrNoSession is returned before any request is sent when no session cookie is available.
var ErrNoSession = errors.New("not logged in")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op         string // "list", "upload", "delete", ...
	StatusCode int
	Message    string // backend "error" field
	Detail     string // "message" field or plain-text body; for logs and auth replies
}

func (e *StatusError) Error() string {
	text := e.Message
	if text == "" {
		text = e.Detail
	}
	if text != "" {
		return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.StatusCode, text)
	}
	return fmt.Sprintf("%s failed: status %d", e.Op, e.StatusCode)
}

// Unwrap lets errors.Is match ErrAuthExpired and ErrNotFound.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case nethttp.StatusUnauthorized, nethttp.StatusForbidden:
		return ErrAuthExpired
	case nethttp.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// IsAuthExpired reports whether err is an authentication failure.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// MessageOr returns the backend-supplied message carried by err, or fallback
// when err has none (transport failures, empty bodies).
//
// Usage:
//
//	notifier.Error(api.MessageOr(err, "Upload failed"))
func MessageOr(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// DetailOr is MessageOr that also accepts the backend "message" field. The
// auth endpoints report failures that way.
func DetailOr(err error, fallback string) string {
	var se *StatusError
	if !errors.As(err, &se) {
		return fallback
	}
	if se.Message != "" {
		return se.Message
	}
	if se.Detail != "" {
		return se.Detail
	}
	return fallback
}
