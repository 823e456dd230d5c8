package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/auth"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/config"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/database"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

func TestRouter_PingAndRequestID(t *testing.T) {
	router := NewRouter(RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestRouter_OptionalRoutesAreOff(t *testing.T) {
	router := NewRouter(RouterConfig{})

	for _, path := range []string{"/api/import", "/api/audit", "/metrics", "/processos/x"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)
	router := NewRouter(RouterConfig{Metrics: metrics, Gatherer: reg})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.requestCount.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestCount.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/ping",status="200"} 3`)
}

func TestRouter_ConsoleWithSessionAndCSRF(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	defer db.Close()
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(sqlDB, config.Session{Lifetime: 24 * time.Hour})
	require.NoError(t, err)

	registry := workspace.NewRegistry(workspace.Options{
		Portal:    &fakePortal{bundle: bundleOf(1, 1)},
		Validator: importsession.NewDomainValidator("sei"),
		PageSize:  5,
	})
	router := NewRouter(RouterConfig{
		Workspaces:     registry,
		SessionManager: sessions,
		CSRFSecret:     []byte("0123456789abcdef0123456789abcdef"),
		Database:       db,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/import", nil))
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Header().Get(auth.CSRFTokenHeader)
	require.NotEmpty(t, token)
	assert.Equal(t, token, decodeStatus(t, w).CSRFToken)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	workspaceID := w.Header().Get(WorkspaceIDHeader)

	// Missing token.
	req := httptest.NewRequest(http.MethodPost, "/api/import/reset", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Token plus cookies reach the same workspace.
	req = httptest.NewRequest(http.MethodPost, "/api/import/reset", strings.NewReader(""))
	req.Header.Set(auth.CSRFTokenHeader, token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, workspaceID, w.Header().Get(WorkspaceIDHeader))
	assert.Equal(t, 1, registry.Len())
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := NewRouter(RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
	} {
		assert.Equal(t, want, w.Header().Get(header), header)
	}
}
