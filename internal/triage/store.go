package triage

import (
	"sync"
	"time"

	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

// Store keeps live sessions in memory keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session.
func (st *Store) Create() *Session {
	s := NewSession(st.now())
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get looks a session up by id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("session", map[string]any{"session_id": id})
	}
	return s, nil
}

// Delete drops a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Sweep removes sessions idle for longer than ttl. Busy sessions are kept.
func (st *Store) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		last, idle := s.idleSince()
		if idle && last.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
