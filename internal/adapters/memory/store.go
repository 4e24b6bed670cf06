// Package memory implements an in-memory ports.LayoutStore, used in tests
// and as the default when persistence is disabled.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rover/pkg/domain"
)

// Store keeps layout snapshots in a map. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	snaps map[string]*domain.LayoutSnapshot
}

// New creates an empty store.
func New() *Store {
	return &Store{snaps: make(map[string]*domain.LayoutSnapshot)}
}

// Save stores a copy of the snapshot.
func (s *Store) Save(ctx context.Context, routine string, snap *domain.LayoutSnapshot) error {
	cp := *snap
	cp.Nodes = append([]domain.LayoutNode(nil), snap.Nodes...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[routine] = &cp
	return nil
}

// Load returns the stored snapshot.
func (s *Store) Load(ctx context.Context, routine string) (*domain.LayoutSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[routine]
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}
	return snap, nil
}

// Delete removes a stored snapshot.
func (s *Store) Delete(ctx context.Context, routine string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, routine)
	return nil
}
