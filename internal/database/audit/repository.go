package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

const defaultListLimit = 50

// Filter narrows an event listing. Zero fields match everything.
type Filter struct {
	WorkspaceID string
	CaseNumber  string
	EventType   entities.AuditEventType
}

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.WorkspaceID != "" {
		db = db.Where("workspace_id = ?", f.WorkspaceID)
	}
	if f.CaseNumber != "" {
		db = db.Where("case_number = ?", f.CaseNumber)
	}
	if f.EventType != "" {
		db = db.Where("event_type = ?", f.EventType)
	}
	return db
}

// Repository stores the import audit trail.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert saves event, stamping CreatedAt when unset.
func (r *Repository) Insert(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// List returns one page of events matching f, newest first, and the total match count.
func (r *Repository) List(f Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.Model(&entities.AuditEvent{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []entities.AuditEvent
	err := r.db.Scopes(f.scope).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, total, err
}

// DeleteBefore removes events created before cutoff and reports how many went.
func (r *Repository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
