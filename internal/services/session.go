package services

import (
	"sync"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
)

// SessionState is the analysis-flow state for one user session
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateRequesting SessionState = "requesting"
	StateDisplaying SessionState = "displaying_result"
	StateErrored    SessionState = "error"
)

// Session tracks a single user's analysis flow. Only one request may be in
// flight at a time, and every request carries a generation number: a reset
// bumps the generation, so a response landing after a reset is recognized as
// stale and discarded without corrupting the now-idle state.
type Session struct {
	mu         sync.Mutex
	state      SessionState
	generation uint64
	result     *domain.AnalysisResult
}

// NewSession creates an idle session
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current flow state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the currently displayed result, if any
func (s *Session) Result() *domain.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Begin moves the session into Requesting and returns the generation token
// the eventual completion must present. Refused while a request is in flight.
func (s *Session) Begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRequesting {
		return 0, apperrors.ErrAnalysisInFlight
	}

	s.generation++
	s.state = StateRequesting
	s.result = nil
	return s.generation, nil
}

// Complete records a successful analysis. Returns false, leaving the session
// untouched, when the generation is stale or the session left Requesting.
func (s *Session) Complete(generation uint64, result *domain.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.state != StateRequesting {
		return false
	}

	s.state = StateDisplaying
	s.result = result
	return true
}

// Fail records a failed analysis under the same staleness rules as Complete
func (s *Session) Fail(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || s.state != StateRequesting {
		return false
	}

	s.state = StateErrored
	return true
}

// Reset returns the session to Idle and invalidates any in-flight request.
// Previously displayed results are dropped; the history log is unaffected.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.result = nil
}

// SessionRegistry hands out one session per owner
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[int64]*Session)}
}

// Session returns the session for the given user, creating it on first use
func (r *SessionRegistry) Session(userID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession()
		r.sessions[userID] = s
	}
	return s
}

// Drop removes a user's session, for example on sign-out
func (r *SessionRegistry) Drop(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
