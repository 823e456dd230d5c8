package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// WorkspaceSweeper drops import workspaces nobody has touched for a while.
type WorkspaceSweeper interface {
	Sweep(idle time.Duration) int
}

// SweepWorkspacesTask unmounts workspaces idle for longer than IdleSeconds.
type SweepWorkspacesTask struct {
	IdleSeconds int64 `json:"idle_seconds"`
}

func (t SweepWorkspacesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_workspaces",
		MaxAttempts: 1,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

func SweepWorkspacesProcessor(sweeper WorkspaceSweeper) backlite.QueueProcessor[SweepWorkspacesTask] {
	return func(ctx context.Context, task SweepWorkspacesTask) error {
		if sweeper == nil {
			return fmt.Errorf("workspace sweeper not configured")
		}
		if task.IdleSeconds <= 0 {
			return fmt.Errorf("invalid idle timeout: %ds", task.IdleSeconds)
		}

		dropped := sweeper.Sweep(time.Duration(task.IdleSeconds) * time.Second)
		log.Printf("[TASK] Swept %d idle workspaces", dropped)
		return nil
	}
}

func NewSweepWorkspacesQueue(sweeper WorkspaceSweeper) backlite.Queue {
	return backlite.NewQueue(SweepWorkspacesProcessor(sweeper))
}
