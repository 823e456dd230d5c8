package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/auth"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/commit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/review"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

const workspaceKey = "workspace"

// ResetRecorder is told when a user discards a staged import.
type ResetRecorder interface {
	LogReset(workspaceID, url string)
}

// ImportStatusResponse is what the console renders for one workspace.
type ImportStatusResponse struct {
	WorkspaceID     string                  `json:"workspace_id"`
	Status          string                  `json:"status"`
	Stage           importsession.Stage     `json:"stage,omitempty"`
	URL             string                  `json:"url,omitempty"`
	Message         string                  `json:"message,omitempty"`
	PendingFetch    bool                    `json:"pending_fetch"`
	PendingCommit   bool                    `json:"pending_commit"`
	CanCommit       bool                    `json:"can_commit"`
	Summary         *entities.CaseSummary   `json:"autuacao,omitempty"`
	TotalDocuments  int                     `json:"total_protocolos"`
	TotalEvents     int                     `json:"total_andamentos"`
	CurrentLocation *entities.TimelineEvent `json:"localizacao_atual,omitempty"`
	Result          *entities.CommitResult  `json:"resultado,omitempty"`
	ActiveCategory  review.Category         `json:"active_category"`
	// CSRFToken is set on GET /api/import when CSRF protection is on.
	CSRFToken       string                  `json:"csrf_token,omitempty"`
}

// fetchRequest leaves url validation to the session so an empty url is
// reported like any other invalid reference.
type fetchRequest struct {
	URL string `json:"url"`
}

type selectRequest struct {
	Category string `json:"category" binding:"required"`
}

// ImportController serves the import console API.
type ImportController struct {
	registry *workspace.Registry
	binder   WorkspaceBinder
	resets   ResetRecorder
}

func NewImportController(registry *workspace.Registry, binder WorkspaceBinder, resets ResetRecorder) *ImportController {
	if binder == nil {
		binder = HeaderBinder{}
	}
	return &ImportController{registry: registry, binder: binder, resets: resets}
}

// Mount resolves the caller's workspace, mounting a fresh Idle one on first use.
func (ic *ImportController) Mount() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ic.binder.WorkspaceID(c)
		ws := ic.registry.GetOrMount(id)
		if ws.ID != id {
			ic.binder.Bind(c, ws.ID)
		}
		c.Header(WorkspaceIDHeader, ws.ID)
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func currentWorkspace(c *gin.Context) *workspace.Workspace {
	return c.MustGet(workspaceKey).(*workspace.Workspace)
}

// GetStatus returns the workspace state.
// GET /api/import
func (ic *ImportController) GetStatus(c *gin.Context) {
	resp := statusOf(currentWorkspace(c))
	resp.CSRFToken = auth.GetCSRFToken(c)
	c.JSON(http.StatusOK, resp)
}

// Fetch starts a preview fetch for the given SEI url and waits for it.
// POST /api/import/fetch
func (ic *ImportController) Fetch(c *gin.Context) {
	ws := currentWorkspace(c)

	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	_, err := ws.Orchestrator.RunFetch(c.Request.Context(), req.URL)
	if err != nil {
		respondOperationError(c, ws, err)
		return
	}
	c.JSON(http.StatusOK, statusOf(ws))
}

// Review returns one page of a category. Without a category it returns the active tab
// at its remembered page.
// GET /api/import/review?category=protocolos&page=0
func (ic *ImportController) Review(c *gin.Context) {
	ws := currentWorkspace(c)

	raw := c.Query("category")
	if raw == "" {
		view, err := ws.Review.Current()
		if err != nil {
			respondInternalError(c, err, "review current")
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	category, err := review.ParseCategory(raw)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	page, ok := parseIntQuery(c, "page", ws.Review.PageOf(category))
	if !ok {
		return
	}

	view, err := ws.Review.View(category, page)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// Select switches the active review tab and returns its current page.
// POST /api/import/review/select
func (ic *ImportController) Select(c *gin.Context) {
	ws := currentWorkspace(c)

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "category is required")
		return
	}

	view, err := ws.Review.Select(review.Category(req.Category))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// Commit saves the staged bundle.
// POST /api/import/commit
func (ic *ImportController) Commit(c *gin.Context) {
	ws := currentWorkspace(c)

	if _, err := ws.Commit.Commit(c.Request.Context()); err != nil {
		respondOperationError(c, ws, err)
		return
	}
	c.JSON(http.StatusOK, statusOf(ws))
}

// Reset discards the staged import and returns to Idle.
// POST /api/import/reset
func (ic *ImportController) Reset(c *gin.Context) {
	ws := currentWorkspace(c)

	url := ws.Session.Reference()
	ws.Session.Reset()
	if ic.resets != nil {
		ic.resets.LogReset(ws.ID, url)
	}
	c.JSON(http.StatusOK, statusOf(ws))
}

// Unmount drops the workspace. The next request starts a new one.
// DELETE /api/import
func (ic *ImportController) Unmount(c *gin.Context) {
	ws := currentWorkspace(c)

	ic.registry.Unmount(ws.ID)
	ic.binder.Forget(c)
	c.Status(http.StatusNoContent)
}

// respondOperationError maps fetch and commit failures to responses. Backend messages
// are passed through verbatim; the details carry the resulting workspace state.
func respondOperationError(c *gin.Context, ws *workspace.Workspace, err error) {
	var (
		invalidRef *importsession.InvalidReferenceError
		fetchErr   *orchestrator.FetchError
		commitErr  *orchestrator.CommitError
	)
	status := statusOf(ws)

	switch {
	case errors.As(err, &invalidRef):
		respondCoded(c, http.StatusBadRequest, CodeInvalidReference, err.Error(), status)
	case errors.Is(err, orchestrator.ErrPending):
		respondCoded(c, http.StatusConflict, CodePending, err.Error(), status)
	case errors.Is(err, orchestrator.ErrStaleAttempt):
		respondCoded(c, http.StatusConflict, CodeStale, err.Error(), status)
	case errors.Is(err, commit.ErrNotReviewable):
		respondCoded(c, http.StatusConflict, CodeNotReviewable, err.Error(), status)
	case errors.Is(err, importsession.ErrInvalidTransition):
		respondCoded(c, http.StatusConflict, CodeInvalidState, err.Error(), status)
	case errors.As(err, &fetchErr):
		respondCoded(c, http.StatusBadGateway, CodeFetchFailed, err.Error(), status)
	case errors.As(err, &commitErr):
		respondCoded(c, http.StatusBadGateway, CodeCommitFailed, err.Error(), status)
	default:
		respondInternalError(c, err, "import operation")
	}
}

func statusOf(ws *workspace.Workspace) ImportStatusResponse {
	snap := ws.Session.Snapshot()
	resp := ImportStatusResponse{
		WorkspaceID:    ws.ID,
		Status:         snap.State.Status.String(),
		Stage:          snap.State.Stage,
		URL:            snap.Reference,
		Message:        snap.Message,
		PendingFetch:   ws.Orchestrator.Pending(orchestrator.OpFetch),
		PendingCommit:  ws.Orchestrator.Pending(orchestrator.OpCommit),
		CanCommit:      snap.State.Status == importsession.StatusLoaded,
		Result:         snap.Result,
		ActiveCategory: ws.Review.Active(),
	}
	if snap.Bundle != nil {
		summary := snap.Bundle.Summary
		resp.Summary = &summary
		resp.TotalDocuments = len(snap.Bundle.SubDocuments)
		resp.TotalEvents = len(snap.Bundle.Events)
		if n := len(snap.Bundle.Events); n > 0 {
			last := snap.Bundle.Events[n-1]
			resp.CurrentLocation = &last
		}
	}
	return resp
}
