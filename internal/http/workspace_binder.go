package http

import (
	"github.com/gin-gonic/gin"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/auth"
)

// WorkspaceIDHeader names the workspace on every console response. Clients
// without cookies send it back to keep using the same workspace.
const WorkspaceIDHeader = "X-Workspace-ID"

// WorkspaceBinder remembers which workspace belongs to the caller.
type WorkspaceBinder interface {
	WorkspaceID(c *gin.Context) string
	Bind(c *gin.Context, id string)
	Forget(c *gin.Context)
}

// SessionBinder keeps the workspace id in the scs browser session.
type SessionBinder struct {
	Sessions *auth.SessionManager
}

func (b SessionBinder) WorkspaceID(c *gin.Context) string {
	return b.Sessions.WorkspaceID(c.Request.Context())
}

func (b SessionBinder) Bind(c *gin.Context, id string) {
	b.Sessions.BindWorkspace(c.Request.Context(), id)
}

func (b SessionBinder) Forget(c *gin.Context) {
	b.Sessions.ForgetWorkspace(c.Request.Context())
}

// HeaderBinder reads the workspace id from the X-Workspace-ID request header.
type HeaderBinder struct{}

func (HeaderBinder) WorkspaceID(c *gin.Context) string {
	return c.GetHeader(WorkspaceIDHeader)
}

func (HeaderBinder) Bind(*gin.Context, string) {}

func (HeaderBinder) Forget(*gin.Context) {}
