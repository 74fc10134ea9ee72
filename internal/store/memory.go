package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore is a concurrency-safe in-memory registry of user sessions.
type SessionStore struct {
	mu sync.RWMutex

	// key: session id
	sessions map[string]*weather.Session

	// sessions idle for longer than maxAge are dropped by Sweep
	maxAge time.Duration
}

// NewSessionStore creates a store. If maxAge is <= 0, sessions never expire.
func NewSessionStore(maxAge time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*weather.Session),
		maxAge:   maxAge,
	}
}

// Create registers a new empty session with a random id.
func (s *SessionStore) Create() *weather.Session {
	sess := weather.NewSession(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id and marks it active.
func (s *SessionStore) Get(id string) (*weather.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Touch(time.Now())
	return sess, nil
}

// GetOrCreate returns the session for id, or a fresh one if id is unknown.
func (s *SessionStore) GetOrCreate(id string) (sess *weather.Session, created bool) {
	if sess, err := s.Get(id); err == nil {
		return sess, false
	}
	return s.Create(), true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now-maxAge and returns how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}
	cutoff := now.Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
