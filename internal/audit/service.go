// Package audit keeps the trail of fetches, commits and resets made from import workspaces.
package audit

import (
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/audit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
)

const (
	maxURLLen     = 2048
	maxMessageLen = 500
)

// Service writes audit rows off the request path and answers audit queries.
type Service struct {
	repo    *audit.Repository
	now     func() time.Time
	pending sync.WaitGroup
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stores a finished fetch or commit. Outcomes that never reached the
// session (stale, ignored, rejected) are dropped.
func (s *Service) Record(workspaceID string, ev orchestrator.Event) {
	event, ok := fromOperation(workspaceID, ev)
	if !ok {
		return
	}
	s.write(event)
}

// LogReset records a user discarding the staged import.
func (s *Service) LogReset(workspaceID, url string) {
	s.write(&entities.AuditEvent{
		WorkspaceID: workspaceID,
		EventType:   entities.AuditEventReset,
		Status:      entities.AuditStatusSuccess,
		SourceURL:   truncate(url, maxURLLen),
	})
}

// GetEvents lists recorded events, newest first.
func (s *Service) GetEvents(f audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(f, limit, offset)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(s.now().Add(-retention))
}

// Wait blocks until every pending write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) write(event *entities.AuditEvent) {
	event.CreatedAt = s.now()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.Insert(event); err != nil {
			log.Printf("[IMPORT] Failed to record %s audit event: %v", event.EventType, err)
		}
	}()
}

func fromOperation(workspaceID string, ev orchestrator.Event) (*entities.AuditEvent, bool) {
	event := &entities.AuditEvent{
		WorkspaceID: workspaceID,
		SourceURL:   truncate(ev.Reference, maxURLLen),
		CaseNumber:  ev.CaseNumber,
		DurationMs:  ev.Duration.Milliseconds(),
	}

	switch ev.Outcome {
	case orchestrator.OutcomeSuccess:
		event.Status = entities.AuditStatusSuccess
	case orchestrator.OutcomeFailure:
		event.Status = entities.AuditStatusFailed
		if ev.Err != nil {
			event.Message = truncate(ev.Err.Error(), maxMessageLen)
		}
	default:
		return nil, false
	}

	switch ev.Operation {
	case orchestrator.OpFetch:
		event.EventType = entities.AuditEventFetch
		event.Documents = ev.Documents
		event.Events = ev.Events
	case orchestrator.OpCommit:
		event.EventType = entities.AuditEventCommit
		if ev.Result != nil {
			event.CaseID = ev.Result.CaseID
			event.Documents = ev.Result.DocumentsSaved
			event.Events = ev.Result.EventsSaved
		}
	default:
		return nil, false
	}
	return event, true
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
