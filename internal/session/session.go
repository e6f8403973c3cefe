// Package session keeps each visitor's workspace in a server-side session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/kernel-prism/internal/kernel"
)

const (
	keyWorkspace = "workspace"
	keySessionID = "session_id"
)

// NewManager creates an SCS session manager backed by the application DB.
// The driver parameter selects the appropriate store: "mysql", "postgres", or
// "sqlite3" (default).
func NewManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "prism_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// Workspaces loads and saves the workspace held in the request's session.
// The session manager's LoadAndSave middleware must wrap every caller.
type Workspaces struct {
	sm   *scs.SessionManager
	opts []kernel.Option
}

// NewWorkspaces returns a repository over sm. opts apply to every workspace
// it creates or decodes.
func NewWorkspaces(sm *scs.SessionManager, opts ...kernel.Option) *Workspaces {
	return &Workspaces{sm: sm, opts: opts}
}

// New returns a fresh workspace carrying the repository's options.
func (ws *Workspaces) New() *kernel.Workspace {
	return kernel.New(ws.opts...)
}

// Load returns the session's workspace, or a fresh one when the session
// holds none.
func (ws *Workspaces) Load(ctx context.Context) (*kernel.Workspace, error) {
	w := ws.New()
	data := ws.sm.GetBytes(ctx, keyWorkspace)
	if len(data) == 0 {
		return w, nil
	}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	return w, nil
}

// Save writes w back into the session.
func (ws *Workspaces) Save(ctx context.Context, w *kernel.Workspace) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	ws.sm.Put(ctx, keyWorkspace, data)
	return nil
}

// Update loads the workspace, applies fn, and saves the result.
func (ws *Workspaces) Update(ctx context.Context, fn func(*kernel.Workspace)) (*kernel.Workspace, error) {
	w, err := ws.Load(ctx)
	if err != nil {
		return nil, err
	}
	fn(w)
	if err := ws.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Key returns a stable identifier for the session, minting one on first use.
// Unlike the SCS token it survives RenewToken.
func (ws *Workspaces) Key(ctx context.Context) string {
	if k := ws.sm.GetString(ctx, keySessionID); k != "" {
		return k
	}
	k := uuid.NewString()
	ws.sm.Put(ctx, keySessionID, k)
	return k
}

// Manager exposes the underlying session manager.
func (ws *Workspaces) Manager() *scs.SessionManager { return ws.sm }
