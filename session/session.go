// Package session owns the connection to the local game-state provider: the
// Session value, the Store it is published through, and the Bootstrap that
// establishes it and keeps retrying in the background while the provider is
// unreachable.
package session

import (
	"errors"
	"sync/atomic"
)

// ErrProviderUnreachable is returned when the provider cannot be reached or
// refuses to hand out a session.
var ErrProviderUnreachable = errors.New("provider unreachable")

// Session describes the current provider connection.
type Session struct {
	Connected bool   `json:"connected"`
	Region    string `json:"region"`
}

// Store publishes Session values atomically. A Session is never mutated in
// place; every change is a new value.
type Store struct {
	v atomic.Pointer[Session]
}

// NewStore returns a store holding a disconnected session.
func NewStore() *Store {
	s := &Store{}
	s.v.Store(&Session{})
	return s
}

// Load returns the current session.
func (s *Store) Load() Session {
	return *s.v.Load()
}

// Publish replaces the current session.
func (s *Store) Publish(sess Session) {
	s.v.Store(&sess)
}

// SetConnected publishes a copy of the current session with Connected set,
// keeping the last known region.
func (s *Store) SetConnected(connected bool) Session {
	next := Session{Connected: connected, Region: s.Load().Region}
	s.Publish(next)
	return next
}
