// Package auth binds browser requests to an import workspace and protects
// the console API.
//
// A browser is identified by an scs session cookie backed by the application's
// SQLite database. The session carries only the workspace id; the workspace itself
// lives in memory (see internal/workspace).
//
// Configuration:
//
//	SESSION_LIFETIME=24h   # Session cookie lifetime
//	SECURE_COOKIES=true    # HTTPS-only cookies
//	CSRF_SECRET=<32 bytes> # Enables CSRF checks on console mutations
//
// Usage in the router:
//
//	console.Use(auth.CSRFMiddleware(secret, secure))
//	console.Use(sessions.LoadAndSave())
package auth
