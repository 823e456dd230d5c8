// Package orchestrator runs the two backend operations of an import and feeds their
// outcomes into the import session.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
)

// Operation names one of the two backend calls.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpCommit Operation = "commit"
)

// Portal is the backend: a preview scrape and an atomic save of a whole bundle.
type Portal interface {
	Preview(ctx context.Context, ref string) (*entities.Bundle, error)
	SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error)
}

// Event describes a finished operation. Listeners receive one per fetch or commit
// that reached the backend, including stale ones.
type Event struct {
	Operation  Operation
	Outcome    string
	Reference  string
	CaseNumber string
	Documents  int
	Events     int
	Result     *entities.CommitResult
	Err        error
	Duration   time.Duration
}

// Listener is notified after an operation has been applied to the session.
type Listener func(Event)

// Orchestrator executes at most one fetch and one commit per attempt and never
// swallows a failure: every outcome for the current attempt updates the session.
type Orchestrator struct {
	session  *importsession.Session
	portal   Portal
	metrics  *Metrics
	listener Listener

	mu       sync.Mutex
	inflight map[Operation]importsession.Attempt
	lastErr  error
}

// New creates an orchestrator driving session through portal.
func New(session *importsession.Session, portal Portal) *Orchestrator {
	return &Orchestrator{
		session:  session,
		portal:   portal,
		inflight: make(map[Operation]importsession.Attempt),
	}
}

// SetMetrics attaches shared prometheus collectors.
func (o *Orchestrator) SetMetrics(m *Metrics) {
	o.metrics = m
}

// SetListener registers a callback for finished operations.
func (o *Orchestrator) SetListener(l Listener) {
	o.listener = l
}

// Session returns the session this orchestrator drives.
func (o *Orchestrator) Session() *importsession.Session {
	return o.session
}

// Pending reports whether op is in flight for the session's current attempt.
func (o *Orchestrator) Pending(op Operation) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pendingLocked(op)
}

// LastError returns the error of the most recent operation, or nil.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// RunFetch starts the session on ref and fetches the preview bundle.
// A repeated call while a fetch is pending returns ErrPending without side effects.
func (o *Orchestrator) RunFetch(ctx context.Context, ref string) (*entities.Bundle, error) {
	o.mu.Lock()
	if o.pendingLocked(OpFetch) {
		o.mu.Unlock()
		o.metrics.count(OpFetch, OutcomeIgnored)
		return nil, ErrPending
	}
	attempt, err := o.session.Start(ref)
	if err != nil {
		o.lastErr = err
		o.mu.Unlock()
		o.metrics.count(OpFetch, OutcomeRejected)
		return nil, err
	}
	o.inflight[OpFetch] = attempt
	o.lastErr = nil
	o.mu.Unlock()

	started := time.Now()
	bundle, err := o.portal.Preview(ctx, ref)
	if err == nil && bundle == nil {
		err = errors.New("backend returned no preview")
	}
	elapsed := time.Since(started)
	o.metrics.observe(OpFetch, elapsed)

	ev := Event{Operation: OpFetch, Reference: ref, Duration: elapsed}

	o.mu.Lock()
	o.clearLocked(OpFetch, attempt)
	var outErr error
	if err != nil {
		fetchErr := &FetchError{Reference: ref, Err: err}
		ev.Err = fetchErr
		if applyErr := o.session.OnFetchFailure(attempt, fetchErr.Error()); applyErr != nil {
			outErr = o.discardLocked(&ev, applyErr)
		} else {
			o.lastErr = fetchErr
			ev.Outcome = OutcomeFailure
			outErr = fetchErr
		}
	} else {
		ev.CaseNumber = bundle.Summary.Number
		ev.Documents = len(bundle.SubDocuments)
		ev.Events = len(bundle.Events)
		if applyErr := o.session.OnFetchSuccess(attempt, *bundle); applyErr != nil {
			outErr = o.discardLocked(&ev, applyErr)
		} else {
			ev.Outcome = OutcomeSuccess
		}
	}
	o.mu.Unlock()

	o.finish(ev)
	if outErr != nil {
		return nil, outErr
	}
	return bundle, nil
}

// RunCommit saves req for the commit attempt returned by Session.BeginCommit.
// The session must be Saving; anything else is a TransitionError and no request is sent.
// A 2xx answer with sucesso=false is a failure carrying the backend's message.
func (o *Orchestrator) RunCommit(ctx context.Context, attempt importsession.Attempt, req entities.SaveRequest) (*entities.CommitResult, error) {
	o.mu.Lock()
	if o.pendingLocked(OpCommit) {
		o.mu.Unlock()
		o.metrics.count(OpCommit, OutcomeIgnored)
		return nil, ErrPending
	}
	if attempt != o.session.Attempt() {
		o.mu.Unlock()
		o.metrics.count(OpCommit, OutcomeStale)
		return nil, ErrStaleAttempt
	}
	if state := o.session.State(); state.Status != importsession.StatusSaving {
		o.mu.Unlock()
		o.metrics.count(OpCommit, OutcomeRejected)
		return nil, &importsession.TransitionError{Action: "send a commit", From: state}
	}
	o.inflight[OpCommit] = attempt
	o.lastErr = nil
	o.mu.Unlock()

	started := time.Now()
	result, err := o.portal.SaveComplete(ctx, req)
	elapsed := time.Since(started)
	o.metrics.observe(OpCommit, elapsed)

	ev := Event{
		Operation:  OpCommit,
		Reference:  req.URL,
		CaseNumber: req.Summary.Number,
		Documents:  len(req.SubDocuments),
		Events:     len(req.Events),
		Duration:   elapsed,
	}

	var commitErr *CommitError
	switch {
	case err != nil:
		commitErr = &CommitError{Err: err, Message: err.Error()}
	case result == nil:
		commitErr = &CommitError{Message: "backend returned no commit result"}
	case !result.Success:
		commitErr = &CommitError{Message: result.Message}
		if commitErr.Message == "" {
			commitErr.Message = "backend rejected the commit"
		}
	}

	o.mu.Lock()
	o.clearLocked(OpCommit, attempt)
	var outErr error
	if commitErr != nil {
		ev.Err = commitErr
		if applyErr := o.session.OnCommitFailure(attempt, commitErr.Error()); applyErr != nil {
			outErr = o.discardLocked(&ev, applyErr)
		} else {
			o.lastErr = commitErr
			ev.Outcome = OutcomeFailure
			outErr = commitErr
		}
	} else {
		ev.Result = result
		if applyErr := o.session.OnCommitSuccess(attempt, *result); applyErr != nil {
			outErr = o.discardLocked(&ev, applyErr)
		} else {
			ev.Outcome = OutcomeSuccess
		}
	}
	o.mu.Unlock()

	o.finish(ev)
	if outErr != nil {
		return nil, outErr
	}
	return result, nil
}

func (o *Orchestrator) pendingLocked(op Operation) bool {
	attempt, ok := o.inflight[op]
	return ok && attempt == o.session.Attempt()
}

func (o *Orchestrator) clearLocked(op Operation, attempt importsession.Attempt) {
	if o.inflight[op] == attempt {
		delete(o.inflight, op)
	}
}

// discardLocked handles an outcome the session refused, which only happens when the
// attempt was superseded by a reset or a newer start.
func (o *Orchestrator) discardLocked(ev *Event, applyErr error) error {
	ev.Outcome = OutcomeStale
	log.Printf("[IMPORT] Discarded %s result for %s: %v", ev.Operation, ev.Reference, applyErr)
	if errors.Is(applyErr, importsession.ErrStaleAttempt) {
		return ErrStaleAttempt
	}
	return applyErr
}

func (o *Orchestrator) finish(ev Event) {
	o.metrics.count(ev.Operation, ev.Outcome)
	if ev.Outcome != OutcomeStale {
		if ev.Err != nil {
			log.Printf("[IMPORT] %s failed for %s after %v: %v", ev.Operation, ev.Reference, ev.Duration.Round(time.Millisecond), ev.Err)
		} else {
			log.Printf("[IMPORT] %s succeeded for %s (%d protocolos, %d andamentos) in %v",
				ev.Operation, ev.Reference, ev.Documents, ev.Events, ev.Duration.Round(time.Millisecond))
		}
	}
	if o.listener != nil {
		o.listener(ev)
	}
}
