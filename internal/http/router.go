package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/auth"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

// AuditService lists audit events and records console resets.
type AuditService interface {
	AuditReader
	ResetRecorder
}

// RouterConfig holds all dependencies required to create the HTTP router.
// Optional parts are switched off by leaving them nil.
type RouterConfig struct {
	Version string

	Workspaces *workspace.Registry

	// SessionManager keys workspaces by browser cookie. Without it the
	// X-Workspace-ID header is used.
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	Database Pinger
	Audit    AuditService
	// CaseStore enables the salvar-completo persistence endpoint.
	CaseStore CaseStore

	Metrics  *PrometheusMiddleware
	Gatherer prometheus.Gatherer
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	// Case numbers contain slashes; clients send them as %2F.
	router.UseRawPath = true
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(RequestIDMiddleware())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Handler())
	}

	var counter WorkspaceCounter
	if cfg.Workspaces != nil {
		counter = cfg.Workspaces
	}
	var stored CaseCounter
	if cfg.CaseStore != nil {
		stored = cfg.CaseStore
	}
	health := NewHealthController(cfg.Database, counter, stored, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	if cfg.Workspaces != nil {
		registerConsole(router, cfg)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	// Machine-to-machine; no session or CSRF.
	if cfg.CaseStore != nil {
		store := NewStoreController(cfg.CaseStore)
		router.POST("/processos/salvar-completo", store.SaveComplete)
		router.GET("/processos/:numero", store.GetCase)
	}

	return router
}

func registerConsole(router *gin.Engine, cfg RouterConfig) {
	var binder WorkspaceBinder = HeaderBinder{}
	console := router.Group("/api/import")

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		console.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.SessionManager != nil {
		console.Use(cfg.SessionManager.LoadAndSave())
		binder = SessionBinder{Sessions: cfg.SessionManager}
	}

	var resets ResetRecorder
	if cfg.Audit != nil {
		resets = cfg.Audit
	}
	imports := NewImportController(cfg.Workspaces, binder, resets)
	console.Use(imports.Mount())

	console.GET("", imports.GetStatus)
	console.POST("/fetch", imports.Fetch)
	console.GET("/review", imports.Review)
	console.POST("/review/select", imports.Select)
	console.POST("/commit", imports.Commit)
	console.POST("/reset", imports.Reset)
	console.DELETE("", imports.Unmount)
}
