package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

func TestAuditController_GetAuditEvents(t *testing.T) {
	fa := &fakeAudit{events: []entities.AuditEvent{
		{ID: 2, EventType: entities.AuditEventCommit, CaseNumber: "X-1"},
		{ID: 1, EventType: entities.AuditEventFetch, CaseNumber: "X-1"},
	}}
	h := &consoleHarness{router: NewRouter(RouterConfig{Audit: fa})}

	w := h.do(t, http.MethodGet, "/api/audit?type=commit&case=X-1&workspace=w1&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []entities.AuditEvent `json:"data"`
		Total      int64                 `json:"total"`
		Page       int                   `json:"page"`
		Limit      int                   `json:"limit"`
		HasMore    bool                  `json:"has_more"`
		TotalPages int                   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.Limit)
	assert.Equal(t, 2, resp.TotalPages)
	assert.True(t, resp.HasMore)

	assert.Equal(t, "w1", fa.filter.WorkspaceID)
	assert.Equal(t, "X-1", fa.filter.CaseNumber)
	assert.Equal(t, entities.AuditEventCommit, fa.filter.EventType)
}

func TestAuditController_RejectsMalformedPage(t *testing.T) {
	h := &consoleHarness{router: NewRouter(RouterConfig{Audit: &fakeAudit{}})}

	w := h.do(t, http.MethodGet, "/api/audit?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
