package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// sessionFile is the on-disk shape of a saved session.
type sessionFile struct {
	BaseURL string    `json:"base_url"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists the session cookie for one backend origin.
// A session saved for a different base URL is ignored.
type Store struct {
	mu      sync.RWMutex
	path    string
	baseURL string
	token   string
}

// NewStore loads the session at path for baseURL. A missing file yields an
// empty session and no error.
func NewStore(path, baseURL string) (*Store, error) {
	s := &Store{path: path, baseURL: strings.TrimRight(baseURL, "/")}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt session file is treated as logged out
		return s, nil
	}
	if strings.TrimRight(f.BaseURL, "/") == s.baseURL {
		s.token = f.Token
	}
	return s, nil
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Token returns the saved session cookie value, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SaveToken writes the session atomically with owner-only permissions.
func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return s.clearLocked()
	}

	data, err := json.MarshalIndent(sessionFile{BaseURL: s.baseURL, Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.token = token
	return nil
}

// Clear forgets the session and removes the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// Claims decodes the current session token, or returns nil when logged out.
func (s *Store) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}
	return ParseClaims(token)
}
