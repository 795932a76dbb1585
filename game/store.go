package game

import "sync/atomic"

// Store holds the latest published MatchState. Readers never observe a
// partially written value: every publish swaps a fresh pointer.
type Store struct {
	v atomic.Pointer[MatchState]
}

// NewStore returns a store that starts out Idle.
func NewStore() *Store {
	s := &Store{}
	idle := Idle()
	s.v.Store(&idle)
	return s
}

// Publish replaces the current state with a copy of state.
func (s *Store) Publish(state MatchState) {
	c := state.Clone()
	s.v.Store(&c)
}

// Load returns a copy of the current state.
func (s *Store) Load() MatchState {
	return s.v.Load().Clone()
}
