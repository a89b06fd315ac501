/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package corpse

import "sync"

// Store holds one Session per channel for the lifetime of the process.
// Sessions are reset with Clear, never removed.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for channel, creating an empty one on first
// use.
func (st *Store) Session(channel string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[channel]; ok {
		return s
	}

	s := newSession()
	st.sessions[channel] = s

	return s
}

// Lookup returns the session for channel without creating one.
func (st *Store) Lookup(channel string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[channel]

	return s, ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}
