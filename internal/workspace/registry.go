// Package workspace keeps one import workflow per console session.
package workspace

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/commit"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/review"
)

// Workspace bundles the components driving a single import.
type Workspace struct {
	ID           string
	Session      *importsession.Session
	Orchestrator *orchestrator.Orchestrator
	Review       *review.Surface
	Commit       *commit.Coordinator

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns when the workspace was last looked up.
func (w *Workspace) LastUsed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

// Options configure every workspace the registry mounts.
type Options struct {
	Portal    orchestrator.Portal
	Validator importsession.ReferenceValidator
	PageSize  int
	Metrics   *orchestrator.Metrics
	// Listener receives the workspace id with every finished operation.
	Listener func(workspaceID string, ev orchestrator.Event)
}

// Registry owns the mounted workspaces.
type Registry struct {
	opts Options
	now  func() time.Time

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Mount creates a fresh Idle workspace under a new id.
func (r *Registry) Mount() *Workspace {
	ws := r.build(uuid.NewString())

	r.mu.Lock()
	r.workspaces[ws.ID] = ws
	r.mu.Unlock()
	return ws
}

// Get returns the workspace for id and marks it as used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	ws, ok := r.workspaces[id]
	r.mu.RUnlock()
	if ok {
		ws.touch(r.now())
	}
	return ws, ok
}

// GetOrMount returns the workspace for id, mounting a new one when id is unknown.
func (r *Registry) GetOrMount(id string) *Workspace {
	if id != "" {
		if ws, ok := r.Get(id); ok {
			return ws
		}
	}
	return r.Mount()
}

// Unmount drops the workspace. Operations still running against it finish
// on a session nobody can reach any more.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()
	if ok {
		ws.Session.Reset()
	}
	return ok
}

// Sweep unmounts workspaces unused for longer than idle and returns how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	var stale []string
	r.mu.RLock()
	for id, ws := range r.workspaces {
		if ws.LastUsed().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	dropped := 0
	for _, id := range stale {
		if r.Unmount(id) {
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("[WORKSPACE] Swept %d idle workspaces", dropped)
	}
	return dropped
}

// Len returns the number of mounted workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

func (r *Registry) build(id string) *Workspace {
	session := importsession.New(r.opts.Validator)
	orch := orchestrator.New(session, r.opts.Portal)
	orch.SetMetrics(r.opts.Metrics)
	if r.opts.Listener != nil {
		listener := r.opts.Listener
		orch.SetListener(func(ev orchestrator.Event) { listener(id, ev) })
	}
	return &Workspace{
		ID:           id,
		Session:      session,
		Orchestrator: orch,
		Review:       review.NewSurface(session, r.opts.PageSize),
		Commit:       commit.NewCoordinator(session, orch),
		lastUsed:     r.now(),
	}
}
