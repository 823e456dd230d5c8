// Package importsession holds the staging store and state machine of one import attempt.
//
// The session moves through
//
//	Idle --Start--> Loading --fetch ok--> Loaded --BeginCommit--> Saving --commit ok--> Completed
//	                Loading --fetch failed--> Failed(fetch) --Start--> Loading
//	                                          Saving --commit failed--> Loaded
//
// and Reset returns to Idle from anywhere. Every network-bound transition is tagged with an
// Attempt; callbacks for an attempt that is no longer current are rejected with ErrStaleAttempt,
// so a late response from a superseded request can never overwrite newer state.
package importsession

import (
	"sync"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

// Attempt identifies one in-flight network operation of a session.
type Attempt uint64

// Snapshot is a read-only copy of the session taken under its lock.
type Snapshot struct {
	State      State                  `json:"state"`
	Reference  string                 `json:"url,omitempty"`
	Staged     bool                   `json:"staged"`
	Bundle     *entities.Bundle       `json:"bundle,omitempty"`
	Result     *entities.CommitResult `json:"result,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Attempt    Attempt                `json:"attempt"`
	Generation uint64                 `json:"generation"`
}

// Session is the single source of truth for one import. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	validator ReferenceValidator

	state      State
	reference  string
	bundle     *entities.Bundle
	result     *entities.CommitResult
	message    string
	attempt    Attempt
	generation uint64
}

// New creates an Idle session.
func New(validator ReferenceValidator) *Session {
	return &Session{validator: validator}
}

// Start begins a fetch for ref. The reference is checked before anything else changes;
// an invalid one leaves the state untouched and records the message.
func (s *Session) Start(ref string) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := transition(s.state, eventStart)
	if err != nil {
		return 0, err
	}
	if s.validator != nil {
		if err := s.validator.Validate(ref); err != nil {
			s.message = err.Error()
			return 0, err
		}
	}

	s.state = next
	s.reference = ref
	s.clearStaged()
	s.message = ""
	s.attempt++
	return s.attempt, nil
}

// OnFetchSuccess stages the fetched bundle.
func (s *Session) OnFetchSuccess(attempt Attempt, bundle entities.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.checkCallback(attempt, eventFetchSucceeded)
	if err != nil {
		return err
	}

	staged := bundle.Clone()
	s.state = next
	s.bundle = &staged
	s.message = ""
	s.generation++
	return nil
}

// OnFetchFailure moves the session to Failed(fetch). Nothing is staged.
func (s *Session) OnFetchFailure(attempt Attempt, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.checkCallback(attempt, eventFetchFailed)
	if err != nil {
		return err
	}

	s.state = next
	s.clearStaged()
	s.message = message
	return nil
}

// BeginCommit moves a reviewed session to Saving and returns the commit attempt.
// Only a Loaded session can commit.
func (s *Session) BeginCommit() (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := transition(s.state, eventBeginCommit)
	if err != nil {
		return 0, err
	}

	s.state = next
	s.message = ""
	s.attempt++
	return s.attempt, nil
}

// OnCommitSuccess completes the import. The staged bundle is kept, frozen, for display.
func (s *Session) OnCommitSuccess(attempt Attempt, result entities.CommitResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.checkCallback(attempt, eventCommitSucceeded)
	if err != nil {
		return err
	}

	s.state = next
	s.result = &result
	s.message = result.Message
	return nil
}

// OnCommitFailure returns the session to Loaded with the staged bundle intact,
// so the commit can be retried without fetching again.
func (s *Session) OnCommitFailure(attempt Attempt, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.checkCallback(attempt, eventCommitFailed)
	if err != nil {
		return err
	}

	s.state = next
	s.message = message
	return nil
}

// Reset discards everything and returns to Idle. Operations still in flight become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Status: StatusIdle}
	s.reference = ""
	s.clearStaged()
	s.message = ""
	s.attempt++
	s.generation++
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Attempt returns the current attempt counter.
func (s *Session) Attempt() Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempt
}

// Message returns the last error or result message.
func (s *Session) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// Reference returns the source reference of the current attempt.
func (s *Session) Reference() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reference
}

// Staged returns a copy of the staged bundle and its generation.
// ok is false when nothing is staged.
func (s *Session) Staged() (bundle entities.Bundle, generation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return entities.Bundle{}, s.generation, false
	}
	return s.bundle.Clone(), s.generation, true
}

// Result returns the commit result once the session is Completed.
func (s *Session) Result() (entities.CommitResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return entities.CommitResult{}, false
	}
	return *s.result, true
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:      s.state,
		Reference:  s.reference,
		Staged:     s.bundle != nil,
		Message:    s.message,
		Attempt:    s.attempt,
		Generation: s.generation,
	}
	if s.bundle != nil {
		b := s.bundle.Clone()
		snap.Bundle = &b
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) checkCallback(attempt Attempt, ev event) (State, error) {
	if attempt != s.attempt {
		return s.state, ErrStaleAttempt
	}
	return transition(s.state, ev)
}

func (s *Session) clearStaged() {
	s.bundle = nil
	s.result = nil
}
