// Package cache memoizes fetched remote resources for the lifetime of the
// process. The store is constructed at startup and injected into the
// loaders, never referenced as ambient state.
package cache

import (
	"sync"
	"time"
)

// Store a key/value memoization of remote resources. Keys are composite
// strings: "owner/name" for repository-scoped resources, the numeric
// plugin id for hub aggregate lookups.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	now func() time.Time
}

type entry struct {
	value   interface{}
	fetched time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// Get returns the cached value for key.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e.value, ok
}

// Set stores value under key, recording the fetch time. An existing value
// is replaced wholesale, never mutated in place.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, fetched: s.now()}
}

// Has reports whether key holds a value.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Fresh reports whether key holds a value fetched within window.
// A zero window means a value never goes stale.
func (s *Store) Fresh(key string, window time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}

	if window == 0 {
		return true
	}

	return s.now().Sub(e.fetched) < window
}
