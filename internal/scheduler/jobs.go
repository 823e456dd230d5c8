package scheduler

import (
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/tasks"
)

const (
	JobWorkspaceSweep = "workspace_sweep"
	JobAuditCleanup   = "audit_cleanup"
)

// Enqueuer hands tasks to the background queue.
type Enqueuer interface {
	Enqueue(tasks ...backlite.Task) error
}

// AuditCleaner deletes audit events past their retention.
type AuditCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// WorkspaceSweepJob drops idle workspaces. With a queue the sweep runs as a task,
// otherwise it runs inline on the scheduler goroutine.
func WorkspaceSweepJob(queue Enqueuer, sweeper tasks.WorkspaceSweeper, idle time.Duration) func() {
	return func() {
		if queue != nil {
			if err := queue.Enqueue(tasks.SweepWorkspacesTask{IdleSeconds: int64(idle / time.Second)}); err != nil {
				log.Printf("[SCHEDULER] %s: %v", JobWorkspaceSweep, err)
			}
			return
		}
		sweeper.Sweep(idle)
	}
}

// AuditCleanupJob removes audit events older than retentionDays.
func AuditCleanupJob(queue Enqueuer, cleaner AuditCleaner, retentionDays int) func() {
	return func() {
		if queue != nil {
			if err := queue.Enqueue(tasks.PruneAuditTrailTask{RetentionDays: retentionDays}); err != nil {
				log.Printf("[SCHEDULER] %s: %v", JobAuditCleanup, err)
			}
			return
		}
		deleted, err := cleaner.DeleteOldEvents(tasks.PruneAuditTrailTask{RetentionDays: retentionDays}.Retention())
		if err != nil {
			log.Printf("[SCHEDULER] %s: %v", JobAuditCleanup, err)
			return
		}
		log.Printf("[SCHEDULER] %s: deleted %d events", JobAuditCleanup, deleted)
	}
}
