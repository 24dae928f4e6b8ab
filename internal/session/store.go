// Package session persists the saved-draft list to an external blob store
// and hydrates it back at startup.
package session

import (
	"context"
	"errors"
	"sync"
)

// DraftsKey is the single fixed key the draft list is stored under.
const DraftsKey = "hpn-quill.drafts"

// ErrNotFound is returned by a BlobStore when the key has never been written.
var ErrNotFound = errors.New("key not found")

// BlobStore is a key-value sink for opaque blobs.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryStore is an in-process BlobStore used for ephemeral sessions and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value under key.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
