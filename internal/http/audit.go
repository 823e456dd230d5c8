package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/audit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

// AuditReader lists recorded import events.
type AuditReader interface {
	GetEvents(f audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// GetAuditEvents returns paginated audit events as JSON, newest first.
// GET /api/audit?page=1&limit=25&type=commit&case=...&workspace=...
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, ok := parseIntQuery(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit", 25)
	if !ok {
		return
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	filter := audit.Filter{
		WorkspaceID: c.Query("workspace"),
		CaseNumber:  c.Query("case"),
		EventType:   entities.AuditEventType(c.Query("type")),
	}
	events, total, err := ac.events.GetEvents(filter, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Page:       page,
		Limit:      limit,
		HasMore:    page < totalPages,
		TotalPages: totalPages,
	})
}
