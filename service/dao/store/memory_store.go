package store

import (
	"context"
	"sync"

	"github.com/viant/stepgate/service/dao"
)

// MemoryStore is a generic in-memory implementation of dao.Service.
// It keeps entities of type *T mapped by a comparable key K.
// The key is obtained from the supplied keySelector function.
//
// This helper lets concrete stores embed it and avoid rewriting identical
// Save/Load/Delete/List logic for every entity type. Higher-level stores can
// still override List when they need additional filtering.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
}

// NewMemoryStore creates a new MemoryStore.
// keySelector extracts the entity key (usually the ID field) from a value.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key, or nil when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns all stored records.
func (s *MemoryStore[K, T]) List(_ context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	return out, nil
}

// Mutate applies fn to the record under the store lock so that all field
// updates made by fn become visible together. It returns dao.ErrNotFound when
// the key is absent; mutations must never silently no-op.
func (s *MemoryStore[K, T]) Mutate(_ context.Context, key K, fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[key]
	if !ok {
		return dao.ErrNotFound
	}
	return fn(v)
}

// View runs fn on the record under the read lock, so readers that need to
// copy a record do so without racing a concurrent Mutate. fn must not retain
// the pointer past its return. Returns dao.ErrNotFound when the key is
// absent.
func (s *MemoryStore[K, T]) View(_ context.Context, key K, fn func(*T)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return dao.ErrNotFound
	}
	fn(v)
	return nil
}

// Range runs fn on every record under the read lock. fn must not retain
// pointers past its return.
func (s *MemoryStore[K, T]) Range(_ context.Context, fn func(*T)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.records {
		fn(v)
	}
	return nil
}
