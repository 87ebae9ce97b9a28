package testutil

import (
	"context"
	"sync"
)

// InMemoryObjectStore implements s3.Service against a map, recording
// every upload for assertions.
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	uploads []string
}

// NewInMemoryObjectStore creates a new in-memory object store
func NewInMemoryObjectStore() *InMemoryObjectStore {
	return &InMemoryObjectStore{
		objects: make(map[string][]byte),
	}
}

func (s *InMemoryObjectStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte{}, body...)
	s.uploads = append(s.uploads, key)
	return nil
}

// Object returns the stored bytes for a key
func (s *InMemoryObjectStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.objects[key]
	return body, ok
}

// UploadCount returns the number of uploads performed
func (s *InMemoryObjectStore) UploadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}

// Uploads returns the keys uploaded so far, in order
func (s *InMemoryObjectStore) Uploads() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.uploads...)
}
