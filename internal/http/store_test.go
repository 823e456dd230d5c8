package http

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/database"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/cases"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

func newStoreHarness(t *testing.T) *consoleHarness {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &consoleHarness{
		router: NewRouter(RouterConfig{Database: db, CaseStore: cases.NewRepository(db.DB)}),
	}
}

func saveBody() entities.SaveRequest {
	b := bundleOf(3, 2)
	return entities.NewSaveRequest(consoleURL, *b)
}

func TestStoreController_SaveComplete(t *testing.T) {
	h := newStoreHarness(t)

	w := h.do(t, http.MethodPost, "/processos/salvar-completo", saveBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result entities.CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.NotZero(t, result.CaseID)
	assert.Equal(t, 3, result.DocumentsSaved)
	assert.Equal(t, 2, result.EventsSaved)

	w = h.do(t, http.MethodGet, "/processos/SEI-000123%2F2024", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var record entities.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	require.Len(t, record.SubDocuments, 3)
	assert.Equal(t, "p1", record.SubDocuments[0].Number)
	assert.Len(t, record.Events, 2)

	w = h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "1", health.Checks["cases"])
}

func TestStoreController_DuplicateIsNotAnHTTPError(t *testing.T) {
	h := newStoreHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/processos/salvar-completo", saveBody()).Code)

	w := h.do(t, http.MethodPost, "/processos/salvar-completo", saveBody())
	require.Equal(t, http.StatusOK, w.Code)
	var result entities.CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "processo SEI-000123/2024 já cadastrado", result.Message)
}

func TestStoreController_BadRequests(t *testing.T) {
	h := newStoreHarness(t)

	w := h.do(t, http.MethodPost, "/processos/salvar-completo", gin.H{"autuacao": gin.H{"numero": "1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "url is required")

	w = h.do(t, http.MethodPost, "/processos/salvar-completo", gin.H{"url": consoleURL})
	assert.Equal(t, http.StatusBadRequest, w.Code, "number is required")

	w = h.do(t, http.MethodGet, "/processos/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
