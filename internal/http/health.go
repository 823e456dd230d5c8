package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// Pinger checks a dependency, typically the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkspaceCounter reports how many import workspaces are mounted.
type WorkspaceCounter interface {
	Len() int
}

// CaseCounter reports how many cases the persistence endpoint has stored.
type CaseCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthController struct {
	db         Pinger
	workspaces WorkspaceCounter
	cases      CaseCounter
	version    string
}

func NewHealthController(db Pinger, workspaces WorkspaceCounter, cases CaseCounter, version string) *HealthController {
	return &HealthController{
		db:         db,
		workspaces: workspaces,
		cases:      cases,
		version:    version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.workspaces != nil {
		checks["workspaces"] = strconv.Itoa(h.workspaces.Len())
	}

	if h.cases != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if n, err := h.cases.Count(ctx); err != nil {
			checks["cases"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["cases"] = strconv.FormatInt(n, 10)
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
