package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/audit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/review"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

const consoleURL = "https://sei.example.gov.br/controlador.php?acao=procedimento_trabalhar&id=123"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePortal struct {
	mu         sync.Mutex
	bundle     *entities.Bundle
	previewErr error
	result     *entities.CommitResult
	saveErr    error
	saves      int
}

func (p *fakePortal) Preview(ctx context.Context, ref string) (*entities.Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bundle, p.previewErr
}

func (p *fakePortal) SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	return p.result, p.saveErr
}

type fakeAudit struct {
	mu     sync.Mutex
	resets []string
	events []entities.AuditEvent
	filter audit.Filter
}

func (a *fakeAudit) LogReset(workspaceID, url string) {
	a.mu.Lock()
	a.resets = append(a.resets, workspaceID)
	a.mu.Unlock()
}

func (a *fakeAudit) GetEvents(f audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	a.filter = f
	return a.events, int64(len(a.events)), nil
}

func bundleOf(docs, events int) *entities.Bundle {
	b := &entities.Bundle{
		Summary: entities.CaseSummary{Number: "SEI-000123/2024", Type: "Licitação", FiledAt: "01/02/2024"},
	}
	for i := 1; i <= docs; i++ {
		b.SubDocuments = append(b.SubDocuments, entities.SubDocument{Number: fmt.Sprintf("p%d", i)})
	}
	for i := 1; i <= events; i++ {
		b.Events = append(b.Events, entities.TimelineEvent{Description: fmt.Sprintf("a%d", i), Unit: fmt.Sprintf("U%d", i)})
	}
	return b
}

type consoleHarness struct {
	router   *gin.Engine
	portal   *fakePortal
	audit    *fakeAudit
	registry *workspace.Registry
	id       string
}

func newConsoleHarness(t *testing.T) *consoleHarness {
	t.Helper()
	portal := &fakePortal{
		bundle: bundleOf(12, 3),
		result: &entities.CommitResult{CaseID: 42, DocumentsSaved: 12, EventsSaved: 3, Success: true, Message: "ok"},
	}
	registry := workspace.NewRegistry(workspace.Options{
		Portal:    portal,
		Validator: importsession.NewDomainValidator("sei"),
		PageSize:  5,
	})
	fa := &fakeAudit{}
	return &consoleHarness{
		router:   NewRouter(RouterConfig{Workspaces: registry, Audit: fa}),
		portal:   portal,
		audit:    fa,
		registry: registry,
	}
}

func (h *consoleHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if h.id != "" {
		req.Header.Set(WorkspaceIDHeader, h.id)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if id := w.Header().Get(WorkspaceIDHeader); id != "" {
		h.id = id
	}
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) ImportStatusResponse {
	t.Helper()
	var resp ImportStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestImportConsole_MountsIdleWorkspace(t *testing.T) {
	h := newConsoleHarness(t)

	w := h.do(t, http.MethodGet, "/api/import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeStatus(t, w)

	assert.NotEmpty(t, resp.WorkspaceID)
	assert.Equal(t, resp.WorkspaceID, w.Header().Get(WorkspaceIDHeader))
	assert.Equal(t, "idle", resp.Status)
	assert.False(t, resp.CanCommit)
	assert.Nil(t, resp.Summary)
	assert.Equal(t, 1, h.registry.Len())

	// Same header, same workspace.
	h.do(t, http.MethodGet, "/api/import", nil)
	assert.Equal(t, 1, h.registry.Len())
}

func TestImportConsole_FetchReviewCommit(t *testing.T) {
	h := newConsoleHarness(t)

	w := h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeStatus(t, w)
	assert.Equal(t, "loaded", resp.Status)
	assert.True(t, resp.CanCommit)
	assert.Equal(t, 12, resp.TotalDocuments)
	assert.Equal(t, 3, resp.TotalEvents)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "SEI-000123/2024", resp.Summary.Number)
	require.NotNil(t, resp.CurrentLocation)
	assert.Equal(t, "a3", resp.CurrentLocation.Description)

	w = h.do(t, http.MethodGet, "/api/import/review?category=protocolos&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view review.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Documents, 2)
	assert.Equal(t, "p11", view.Documents[0].Number)
	assert.Equal(t, 3, view.TotalPages)
	assert.False(t, view.HasNext)

	w = h.do(t, http.MethodPost, "/api/import/review/select", gin.H{"category": "andamentos"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, review.CategoryEvents, view.Category)
	assert.Len(t, view.Events, 3)

	// The documents tab kept its page.
	w = h.do(t, http.MethodGet, "/api/import/review?category=protocolos", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Page)

	w = h.do(t, http.MethodPost, "/api/import/commit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeStatus(t, w)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, int64(42), resp.Result.CaseID)

	// Completed is terminal for commits.
	w = h.do(t, http.MethodPost, "/api/import/commit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeNotReviewable, decodeError(t, w).Code)
	assert.Equal(t, 1, h.portal.saves)
}

func TestImportConsole_InvalidReference(t *testing.T) {
	h := newConsoleHarness(t)

	for _, url := range []string{"", "not a url", "https://example.com/x"} {
		w := h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": url})
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.Equal(t, CodeInvalidReference, decodeError(t, w).Code, url)
	}

	w := h.do(t, http.MethodGet, "/api/import", nil)
	assert.Equal(t, "idle", decodeStatus(t, w).Status)
}

func TestImportConsole_FetchFailurePassesMessageThrough(t *testing.T) {
	h := newConsoleHarness(t)
	h.portal.previewErr = errors.New("Processo não encontrado")

	w := h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL})
	require.Equal(t, http.StatusBadGateway, w.Code)
	errResp := decodeError(t, w)
	assert.Equal(t, CodeFetchFailed, errResp.Code)
	assert.Equal(t, "Processo não encontrado", errResp.Error)

	resp := decodeStatus(t, h.do(t, http.MethodGet, "/api/import", nil))
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, importsession.StageFetch, resp.Stage)
	assert.Equal(t, "Processo não encontrado", resp.Message)

	// Failed allows a new fetch.
	h.portal.previewErr = nil
	w = h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportConsole_CommitFailureKeepsReview(t *testing.T) {
	h := newConsoleHarness(t)
	h.portal.result = &entities.CommitResult{Success: false, Message: "processo já cadastrado"}

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL}).Code)

	w := h.do(t, http.MethodPost, "/api/import/commit", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	errResp := decodeError(t, w)
	assert.Equal(t, CodeCommitFailed, errResp.Code)
	assert.Equal(t, "processo já cadastrado", errResp.Error)

	resp := decodeStatus(t, h.do(t, http.MethodGet, "/api/import", nil))
	assert.Equal(t, "loaded", resp.Status)
	assert.True(t, resp.CanCommit)
	assert.Equal(t, 12, resp.TotalDocuments)
}

func TestImportConsole_FetchFromLoadedNeedsReset(t *testing.T) {
	h := newConsoleHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL}).Code)

	w := h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeInvalidState, decodeError(t, w).Code)

	w = h.do(t, http.MethodPost, "/api/import/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeStatus(t, w)
	assert.Equal(t, "idle", resp.Status)
	assert.Zero(t, resp.TotalDocuments)
	assert.Equal(t, []string{h.id}, h.audit.resets)

	w = h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportConsole_ReviewBadInput(t *testing.T) {
	h := newConsoleHarness(t)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/import/review?category=anexos", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/import/review?category=protocolos&page=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/import/review/select", gin.H{"category": "anexos"}).Code)

	// Nothing staged yields an empty page.
	w := h.do(t, http.MethodGet, "/api/import/review", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view review.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Zero(t, view.Total)

	w = h.do(t, http.MethodGet, "/api/import/review?category=protocolos&page=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Documents)
	assert.False(t, view.HasNext)
}

func TestImportConsole_Unmount(t *testing.T) {
	h := newConsoleHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/import/fetch", gin.H{"url": consoleURL}).Code)
	first := h.id

	w := h.do(t, http.MethodDelete, "/api/import", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, h.registry.Len())

	resp := decodeStatus(t, h.do(t, http.MethodGet, "/api/import", nil))
	assert.Equal(t, "idle", resp.Status)
	assert.NotEqual(t, first, resp.WorkspaceID)
}
