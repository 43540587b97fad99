package artifact

import (
	"sort"
	"sync"
)

// InMemoryStore is an in-process ArtifactStore for tests, examples and
// single-process prototypes. Artifacts live in a nested map guarded by an
// RWMutex; bytes are copied on save and retrieval so callers can never
// mutate internal buffers.
//
// Layout: taskID -> artifact name -> raw bytes
//
// The store does not enforce retention limits, size quotas or eviction.
// Deployments that need artifacts to survive restarts should use FSStore or
// another durable backend.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given task and
// name. The input slice is copied before storage.
func (s *InMemoryStore) Save(taskID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.artifacts[taskID]; !exists {
		s.artifacts[taskID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.artifacts[taskID][name] = cp
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (s *InMemoryStore) Get(taskID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.artifacts[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the artifact names stored for the task, sorted for
// determinism. The slice is a snapshot safe for caller mutation.
func (s *InMemoryStore) List(taskID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.artifacts[taskID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(taskID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.artifacts[taskID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[name]; !ok {
		return ErrNotFound
	}
	delete(m, name)
	return nil
}
