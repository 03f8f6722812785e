package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Store implements ports.TreeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.TreeSpec
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.TreeSpec),
	}
}

// Save keeps a copy of spec, so later edits by the caller do not reach the store.
func (s *Store) Save(_ context.Context, id string, spec *domain.TreeSpec) error {
	copied := spec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load returns a copy of the stored spec.
func (s *Store) Load(_ context.Context, id string) (*domain.TreeSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.data[id]
	if !ok {
		return nil, domain.ErrTreeNotFound
	}
	return spec.Clone(), nil
}

// Delete removes id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored ids in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
