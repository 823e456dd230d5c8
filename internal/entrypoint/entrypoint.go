package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/audit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/auth"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/config"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/database"
	auditrepo "github.com/RaulAraujoSilva/SEI-sub000/internal/database/audit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/cases"
	http_controllers "github.com/RaulAraujoSilva/SEI-sub000/internal/http"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/portal"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/scheduler"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/tasks"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting SEI import console v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	operationMetrics, err := orchestrator.NewMetrics(registry)
	if err != nil {
		log.Fatalf("Failed to register import metrics: %v", err)
	}
	httpMetrics, err := http_controllers.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("Failed to register http metrics: %v", err)
	}

	log.Printf("Backend: %s (timeout %v)", cfg.Backend.URL, cfg.Backend.Timeout)
	workspaces := workspace.NewRegistry(workspace.Options{
		Portal:    portal.NewClient(cfg.Backend.URL, cfg.Backend.Timeout),
		Validator: importsession.NewDomainValidator(cfg.Source.Domain),
		PageSize:  cfg.Review.PageSize,
		Metrics:   operationMetrics,
		Listener:  auditService.Record,
	})

	// Initialize task queue if enabled
	var taskQueue *tasks.Queue
	var queue scheduler.Enqueuer
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskQueue, err = tasks.Open(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, tasks.Handlers{
			Sweeper: workspaces,
			Pruner:  auditService,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskQueue.Close(); err != nil {
				log.Printf("Error closing task queue: %v", err)
			}
		}()
		// Assigned only here so the scheduler sees a nil interface when tasks are off.
		queue = taskQueue

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskQueue.Start(taskCtx)
	}

	maintenance := scheduler.NewMaintenanceScheduler()
	if err := maintenance.Add(scheduler.JobWorkspaceSweep, cfg.Workspace.SweepSchedule,
		scheduler.WorkspaceSweepJob(queue, workspaces, cfg.Workspace.IdleTimeout)); err != nil {
		log.Fatalf("Invalid WORKSPACE_SWEEP_SCHEDULE: %v", err)
	}
	if err := maintenance.Add(scheduler.JobAuditCleanup, cfg.Audit.Schedule,
		scheduler.AuditCleanupJob(queue, auditService, cfg.Audit.RetentionDays)); err != nil {
		log.Fatalf("Invalid AUDIT_CLEANUP_SCHEDULE: %v", err)
	}
	maintenance.Start(context.Background())

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var csrfSecret []byte
	if cfg.Session.CSRFSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Session.CSRFSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Session.CSRFSecret)
		}
	} else {
		log.Printf("CSRF protection disabled (set CSRF_SECRET to enable)")
	}

	routerCfg := http_controllers.RouterConfig{
		Version:        version,
		Workspaces:     workspaces,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Session.SecureCookies,
		Database:       db,
		Audit:          auditService,
		Metrics:        httpMetrics,
		Gatherer:       registry,
	}
	if cfg.Store.Enabled {
		log.Printf("Persistence endpoint enabled at POST /processos/salvar-completo")
		routerCfg.CaseStore = cases.NewRepository(db.DB)
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		maintenance.Stop()
		if taskQueue != nil && taskCtxCancel != nil {
			taskQueue.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
