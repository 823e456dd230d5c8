package auth

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/config"
)

// SessionKeyWorkspaceID stores the id of the browser's import workspace.
const SessionKeyWorkspaceID = "workspace_id"

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2

	sm.Cookie.Name = "sei_import_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// WorkspaceID returns the workspace bound to the session, or "".
func (sm *SessionManager) WorkspaceID(ctx context.Context) string {
	return sm.GetString(ctx, SessionKeyWorkspaceID)
}

// BindWorkspace records id as the session's workspace.
func (sm *SessionManager) BindWorkspace(ctx context.Context, id string) {
	sm.Put(ctx, SessionKeyWorkspaceID, id)
}

// ForgetWorkspace removes the binding so the next request mounts a fresh workspace.
func (sm *SessionManager) ForgetWorkspace(ctx context.Context) {
	sm.Remove(ctx, SessionKeyWorkspaceID)
}
