package service

import (
	"sync"

	"github.com/clanops/roster-bot/internal/core/challenge"
)

// Step identifies the actor's position in the registration flow.
type Step int

const (
	StepIdle Step = iota
	StepChallenge
	StepNickname
	StepProof
)

// Session accumulates the partial data of one actor's registration attempt.
// The zero value is an idle session.
type Session struct {
	Step      Step
	Nickname  string
	Challenge challenge.Question
}

// SessionStore holds conversational state keyed by actor id. State is
// transient: cleared on completion or cancellation, and lost on restart.
// Each transition reads and writes one actor's entry under the store lock.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

// Get returns the actor's current session, idle if none exists.
func (s *SessionStore) Get(actorID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[actorID]
}

// Put replaces the actor's session.
func (s *SessionStore) Put(actorID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[actorID] = sess
}

// Clear resets the actor to idle, discarding accumulated data.
func (s *SessionStore) Clear(actorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, actorID)
}
