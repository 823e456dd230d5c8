// Package tasks runs the console's maintenance work on a backlite queue.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Config sizes the worker pool.
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // stuck tasks go back to the queue after this
	CleanupInterval time.Duration // how often finished tasks are purged
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers < 1 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}

// Handlers are the components the maintenance tasks act on.
type Handlers struct {
	Sweeper WorkspaceSweeper
	Pruner  AuditTrailPruner
}

// Queue owns the backlite client and its SQLite file.
type Queue struct {
	client  *backlite.Client
	db      *sql.DB
	workers int

	mu      sync.Mutex
	started bool
}

// Open creates the queue next to the main database (sei-import.db becomes
// sei-import-tasks.db) and registers the sweep and prune queues.
func Open(mainDBPath string, cfg Config, h Handlers) (*Queue, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("sqlite3", TasksDBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	client.Register(NewSweepWorkspacesQueue(h.Sweeper))
	client.Register(NewPruneAuditTrailQueue(h.Pruner))

	return &Queue{client: client, db: db, workers: cfg.Workers}, nil
}

// TasksDBPath derives the queue database path from the main database path.
func TasksDBPath(mainDBPath string) string {
	dir, base := filepath.Split(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-tasks"+ext)
}

// Enqueue saves tasks for the workers.
func (q *Queue) Enqueue(tasks ...backlite.Task) error {
	ids, err := q.client.Add(tasks...).Save()
	if err != nil {
		return fmt.Errorf("enqueue tasks: %w", err)
	}
	log.Printf("[TASK] Enqueued %d task(s): %v", len(ids), ids)
	return nil
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	log.Printf("[TASK] Queue started with %d workers", q.workers)
	q.client.Start(ctx)
}

// Stop waits for running tasks until ctx expires and reports whether all finished.
func (q *Queue) Stop(ctx context.Context) bool {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		return true
	}

	ok := q.client.Stop(ctx)
	if ok {
		log.Println("[TASK] Queue stopped")
	} else {
		log.Println("[TASK] Queue stopped before all tasks finished")
	}
	return ok
}

// Close releases the database. Call it after Stop.
func (q *Queue) Close() error {
	return q.db.Close()
}

type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
