// Package sessionmock provides an in-memory session.Store for tests.
package sessionmock

import (
	"context"
	"sync"

	"github.com/devshare/devshare-cli/internal/serviceerr"
	"github.com/devshare/devshare-cli/internal/session"
)

type StoreOption func(*Store)

// Store is a map-backed session.Store with per-operation error injection.
type Store struct {
	mu     sync.Mutex
	values map[string]string

	getErr, setErr, deleteErr error
}

func WithValue(key, value string) StoreOption {
	return func(s *Store) { s.values[key] = value }
}

func WithGetError(err error) StoreOption {
	return func(s *Store) { s.getErr = err }
}

func WithSetError(err error) StoreOption {
	return func(s *Store) { s.setErr = err }
}

func WithDeleteError(err error) StoreOption {
	return func(s *Store) { s.deleteErr = err }
}

var _ = session.Store(&Store{})

func NewInMemStore(opts ...StoreOption) *Store {
	s := &Store{values: make(map[string]string)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.values[key]; ok {
		return value, nil
	}
	return "", serviceerr.ErrNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// TGet reads a value directly, bypassing error injection. Test helper.
func (s *Store) TGet(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// THas reports whether key is present. Test helper.
func (s *Store) THas(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}
