package ticket

import (
	"context"
	"sync"
)

// BlobStore uploads ticket images and returns their public URL.
type BlobStore interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// InMemoryBlobStore keeps uploads in memory for tests and local development.
type InMemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{objects: make(map[string][]byte)}
}

func (s *InMemoryBlobStore) Put(_ context.Context, objectName, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = append([]byte{}, data...)
	return "memory://" + objectName, nil
}

// Get returns an uploaded object, for test assertions.
func (s *InMemoryBlobStore) Get(objectName string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectName]
	return data, ok
}
