package commit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
)

const testURL = "https://source.example/case/123"

type stubPortal struct {
	bundle *entities.Bundle
	result *entities.CommitResult
	err    error
	saves  []entities.SaveRequest
}

func (p *stubPortal) Preview(ctx context.Context, ref string) (*entities.Bundle, error) {
	return p.bundle, nil
}

func (p *stubPortal) SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error) {
	p.saves = append(p.saves, req)
	return p.result, p.err
}

func setup(t *testing.T, fetch bool) (*Coordinator, *importsession.Session, *stubPortal) {
	t.Helper()
	b := entities.Bundle{Summary: entities.CaseSummary{Number: "X-1"}}
	for i := 1; i <= 12; i++ {
		b.SubDocuments = append(b.SubDocuments, entities.SubDocument{Number: fmt.Sprintf("p%d", i)})
	}
	b.Events = []entities.TimelineEvent{{Description: "a1"}, {Description: "a2"}}

	portal := &stubPortal{bundle: &b}
	session := importsession.New(importsession.NewDomainValidator("source.example"))
	orch := orchestrator.New(session, portal)
	if fetch {
		_, err := orch.RunFetch(context.Background(), testURL)
		require.NoError(t, err)
	}
	return NewCoordinator(session, orch), session, portal
}

func TestCoordinator_CommitFailureKeepsStagedData(t *testing.T) {
	coord, session, portal := setup(t, true)
	portal.result = &entities.CommitResult{Success: false, Message: "duplicate"}

	out, err := coord.Commit(context.Background())
	var commitErr *orchestrator.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "duplicate", err.Error())

	assert.Equal(t, importsession.StatusLoaded, out.State.Status)
	assert.Equal(t, "duplicate", out.Message)
	assert.False(t, out.Completed())

	staged, _, ok := session.Staged()
	require.True(t, ok)
	assert.Len(t, staged.SubDocuments, 12)
	assert.Equal(t, "X-1", staged.Summary.Number)
}

func TestCoordinator_RetryAfterFailure(t *testing.T) {
	coord, _, portal := setup(t, true)
	portal.err = errors.New("backend unavailable")

	_, err := coord.Commit(context.Background())
	require.Error(t, err)

	portal.err = nil
	portal.result = &entities.CommitResult{CaseID: 7, DocumentsSaved: 12, EventsSaved: 2, Success: true}
	out, err := coord.Commit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Completed())
	require.Len(t, portal.saves, 2)
	assert.Equal(t, portal.saves[0], portal.saves[1])
}

func TestCoordinator_CommitSuccessIsTerminal(t *testing.T) {
	coord, session, portal := setup(t, true)
	portal.result = &entities.CommitResult{CaseID: 42, DocumentsSaved: 12, EventsSaved: 2, Success: true}

	out, err := coord.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, importsession.StatusCompleted, out.State.Status)
	require.NotNil(t, out.Result)
	assert.Equal(t, int64(42), out.Result.CaseID)

	require.Len(t, portal.saves, 1)
	assert.Equal(t, testURL, portal.saves[0].URL)
	assert.Equal(t, "X-1", portal.saves[0].Summary.Number)
	assert.Len(t, portal.saves[0].Events, 2)

	_, err = session.BeginCommit()
	assert.ErrorIs(t, err, importsession.ErrInvalidTransition)

	_, err = coord.Commit(context.Background())
	assert.ErrorIs(t, err, ErrNotReviewable)
	assert.Len(t, portal.saves, 1)
}

func TestCoordinator_RefusesWithoutFetch(t *testing.T) {
	coord, session, portal := setup(t, false)

	out, err := coord.Commit(context.Background())
	assert.ErrorIs(t, err, ErrNotReviewable)
	assert.Equal(t, importsession.StatusIdle, out.State.Status)
	assert.Equal(t, importsession.StatusIdle, session.State().Status)
	assert.Empty(t, portal.saves)
}
