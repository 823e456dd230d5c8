package config

import (
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Backend
		Source
		Review
		Database
		Store
		Audit
		Tasks
		Workspace
		Session
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Backend struct {
		URL     string        // Base URL of the service exposing scrape-preview and salvar-completo
		Timeout time.Duration // Per-request timeout, scrapes can be slow
	}
	Source struct {
		Domain string // Substring every case URL must carry in its host
	}
	Review struct {
		PageSize int
	}
	Database struct {
		Path string
	}
	Store struct {
		Enabled bool // Serve POST /processos/salvar-completo from the local database
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
		Schedule      string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Workspace struct {
		IdleTimeout   time.Duration
		SweepSchedule string // Cron format
	}
	Session struct {
		Lifetime      time.Duration
		SecureCookies bool   // Set to false for local dev without HTTPS
		CSRFSecret    string // 32 bytes; CSRF protection is off when empty
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("backend_timeout", "2m")
	v.SetDefault("source_domain", DefaultSourceDomain)
	v.SetDefault("review_page_size", 10)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("store_enabled", false)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *") // Daily at 03:00

	v.SetDefault("workspace_idle_timeout", "30m")
	v.SetDefault("workspace_sweep_schedule", "*/5 * * * *")

	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("secure_cookies", true)
	v.SetDefault("csrf_secret", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Backend: Backend{
			URL:     v.GetString("BACKEND_URL"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Source: Source{
			Domain: v.GetString("SOURCE_DOMAIN"),
		},
		Review: Review{
			PageSize: v.GetInt("REVIEW_PAGE_SIZE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Store: Store{
			Enabled: v.GetBool("STORE_ENABLED"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			Schedule:      v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Workspace: Workspace{
			IdleTimeout:   v.GetDuration("WORKSPACE_IDLE_TIMEOUT"),
			SweepSchedule: v.GetString("WORKSPACE_SWEEP_SCHEDULE"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
			CSRFSecret:    v.GetString("CSRF_SECRET"),
		},
	}
}
