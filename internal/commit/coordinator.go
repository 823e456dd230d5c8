// Package commit implements the save action of the import console.
package commit

import (
	"context"
	"errors"
	"fmt"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
)

// ErrNotReviewable is returned when the session has no reviewed bundle to save.
var ErrNotReviewable = errors.New("nothing staged for review")

// Outcome is the state the session settled in after a commit.
type Outcome struct {
	State   importsession.State    `json:"state"`
	Result  *entities.CommitResult `json:"result,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Completed reports whether the commit reached the terminal state.
func (o Outcome) Completed() bool {
	return o.State.Status == importsession.StatusCompleted
}

// Coordinator saves the staged bundle of one session.
type Coordinator struct {
	session      *importsession.Session
	orchestrator *orchestrator.Orchestrator
}

func NewCoordinator(session *importsession.Session, orch *orchestrator.Orchestrator) *Coordinator {
	return &Coordinator{session: session, orchestrator: orch}
}

// Commit moves the session to Saving and sends the staged bundle to the backend.
// On a backend failure the returned Outcome is Loaded with the backend message and
// err is the *orchestrator.CommitError; the staged data is still there for a retry.
func (c *Coordinator) Commit(ctx context.Context) (Outcome, error) {
	if c.orchestrator.Pending(orchestrator.OpCommit) {
		return c.outcome(), orchestrator.ErrPending
	}
	if state := c.session.State(); state.Status != importsession.StatusLoaded {
		return c.outcome(), fmt.Errorf("%w: session is %s", ErrNotReviewable, state)
	}

	attempt, err := c.session.BeginCommit()
	if err != nil {
		return c.outcome(), err
	}

	staged, _, ok := c.session.Staged()
	if !ok {
		// Reset between BeginCommit and here.
		return c.outcome(), orchestrator.ErrStaleAttempt
	}
	req := entities.NewSaveRequest(c.session.Reference(), staged)

	if _, err := c.orchestrator.RunCommit(ctx, attempt, req); err != nil {
		return c.outcome(), err
	}
	return c.outcome(), nil
}

func (c *Coordinator) outcome() Outcome {
	snap := c.session.Snapshot()
	return Outcome{State: snap.State, Result: snap.Result, Message: snap.Message}
}
