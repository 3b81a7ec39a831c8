package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the opaque session token the backend may rotate on any
// response. It is passed into the Client explicitly; there is no ambient
// package-level token state.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// FileTokenStore persists the session token to a 0600 file so a restarted
// client keeps its session.
type FileTokenStore struct {
	path string

	mu     sync.Mutex
	cached string
	loaded bool
}

// NewFileTokenStore creates a store backed by the file at path. The file is
// created lazily on the first SetToken.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Token returns the current session token, or "" when none is stored.
func (s *FileTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		data, err := os.ReadFile(s.path)
		if err == nil {
			s.cached = strings.TrimSpace(string(data))
		}
		s.loaded = true
	}
	return s.cached
}

// SetToken replaces the stored token. The rotation must land before the next
// request is issued, so the write happens synchronously.
func (s *FileTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = token
	s.loaded = true

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0600)
}

// MemTokenStore is an in-memory TokenStore for tests and ephemeral sessions.
type MemTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}
