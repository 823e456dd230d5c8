package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditTrailPruner deletes fetch and commit records past their retention.
type AuditTrailPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneAuditTrailTask drops audit events older than RetentionDays.
type PruneAuditTrailTask struct {
	RetentionDays int `json:"retention_days"`
}

// Retention is the age past which events are deleted.
func (t PruneAuditTrailTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (t PruneAuditTrailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_trail",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func PruneAuditTrailProcessor(pruner AuditTrailPruner) backlite.QueueProcessor[PruneAuditTrailTask] {
	return func(ctx context.Context, task PruneAuditTrailTask) error {
		if pruner == nil {
			return errors.New("audit trail pruner not configured")
		}

		retention := task.Retention()
		deleted, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("prune audit trail: %w", err)
		}

		log.Printf("[TASK] Pruned %d audit events older than %v", deleted, retention)
		return nil
	}
}

func NewPruneAuditTrailQueue(pruner AuditTrailPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditTrailProcessor(pruner))
}
