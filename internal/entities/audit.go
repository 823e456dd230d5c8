package entities

import "time"

// AuditEventType is the console action an audit row records.
type AuditEventType string

const (
	AuditEventFetch  AuditEventType = "fetch"
	AuditEventCommit AuditEventType = "commit"
	AuditEventReset  AuditEventType = "reset"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one fetch, commit or reset performed from an import workspace.
// Counts describe the bundle fetched or, for commits, what the backend saved.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID string         `gorm:"index;size:64" json:"workspace_id"`
	EventType   AuditEventType `gorm:"index;size:16" json:"tipo"`
	Status      AuditStatus    `gorm:"size:16" json:"status"`
	SourceURL   string         `gorm:"size:2048" json:"url,omitempty"`
	CaseNumber  string         `gorm:"index;size:64" json:"numero,omitempty"`
	CaseID      int64          `json:"processo_id,omitempty"`
	Documents   int            `json:"protocolos"`
	Events      int            `json:"andamentos"`
	DurationMs  int64          `json:"duracao_ms"`
	Message     string         `gorm:"size:500" json:"mensagem,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
