package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore"
)

// Store is an in-memory implementation of lookupstore.Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]lookupstore.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]lookupstore.Entry)}
}

// Close implements lookupstore.Store.
func (s *Store) Close() error { return nil }

// Get implements lookupstore.Store.
func (s *Store) Get(ctx context.Context, key string) (lookupstore.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return lookupstore.Entry{}, false, nil
	}
	return copyEntry(e), true, nil
}

// Put implements lookupstore.Store.
func (s *Store) Put(ctx context.Context, key string, e lookupstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = copyEntry(e)
	return nil
}

// Delete implements lookupstore.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Prune implements lookupstore.Store.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if e.CachedAt.Before(cutoff) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func copyEntry(e lookupstore.Entry) lookupstore.Entry {
	e.Definitions = append([]string(nil), e.Definitions...)
	e.Raw = append([]byte(nil), e.Raw...)
	return e
}

var _ lookupstore.Store = (*Store)(nil)
