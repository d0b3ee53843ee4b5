package api

import "sync"

// SessionStore holds the session cookie value between requests.
// auth.Store persists it to disk; MemorySession keeps it in memory.
type SessionStore interface {
	Token() string
	SaveToken(token string) error
	Clear() error
}

// MemorySession is an in-memory SessionStore.
type MemorySession struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySession returns a MemorySession seeded with token.
func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (m *MemorySession) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemorySession) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemorySession) Clear() error {
	return m.SaveToken("")
}
