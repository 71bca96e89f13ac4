package manifest

import (
	"context"
	"sync/atomic"
)

// Store publishes the current manifest Set. Readers never block; a reload
// swaps in a whole new Set.
type Store struct {
	current atomic.Pointer[Set]
	loaded  atomic.Bool
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(Empty())
	return s
}

// Get returns the current Set, never nil.
func (s *Store) Get() *Set {
	return s.current.Load()
}

func (s *Store) Set(set *Set) {
	if set == nil {
		set = Empty()
	}
	s.current.Store(set)
	s.loaded.Store(true)
}

// Loaded reports whether a Set has been published since NewStore.
func (s *Store) Loaded() bool {
	return s.loaded.Load()
}

// Reload loads a fresh Set and publishes it.
func (s *Store) Reload(ctx context.Context, l *Loader) *Set {
	set := l.Load(ctx)
	s.Set(set)
	return set
}
