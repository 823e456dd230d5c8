package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// MaintenanceScheduler runs the periodic housekeeping jobs of the import console.
type MaintenanceScheduler struct {
	cron *cron.Cron

	mu         sync.RWMutex
	entries    map[string]cron.EntryID
	isRunning  bool
	cancelFunc context.CancelFunc

	// Guards running separately: Stop holds mu while waiting for jobs.
	jobMu   sync.Mutex
	running map[string]bool
}

func NewMaintenanceScheduler() *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		running: make(map[string]bool),
	}
}

// Add registers job under name. An empty schedule disables the job.
// A run that is still in progress when the next tick fires is skipped.
func (s *MaintenanceScheduler) Add(name, schedule string, job func()) error {
	if schedule == "" {
		log.Printf("[SCHEDULER] %s: disabled", name)
		return nil
	}
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s' for %s: %w", schedule, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}
	id, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.entries[name] = id
	log.Printf("[SCHEDULER] %s: scheduled '%s'", name, schedule)
	return nil
}

// Start begins running jobs until Stop is called or ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("[SCHEDULER] started with %d jobs", len(s.entries))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
}

// Stop stops accepting new runs and waits for running jobs to complete.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] stopped")
}

// RunNow triggers job name immediately, outside of its schedule.
func (s *MaintenanceScheduler) RunNow(name string) error {
	s.mu.RLock()
	id, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when job name will run next, or nil when the scheduler is stopped.
func (s *MaintenanceScheduler) GetNextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[name]
	if !ok || !s.isRunning {
		return nil
	}
	t := s.cron.Entry(id).Next
	return &t
}

func (s *MaintenanceScheduler) run(name string, job func()) {
	s.jobMu.Lock()
	if s.running[name] {
		s.jobMu.Unlock()
		log.Printf("[SCHEDULER] %s: skipped (already running)", name)
		return
	}
	s.running[name] = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.running[name] = false
		s.jobMu.Unlock()
	}()

	started := time.Now()
	job()
	log.Printf("[SCHEDULER] %s: finished in %v", name, time.Since(started).Round(time.Millisecond))
}
