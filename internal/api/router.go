// Package api serves the JSON interface to the session workspace under /api/v1.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Workspaces  *session.Workspaces
	ExportStore store.ExportStoreIface
	ExportCh    chan<- store.ExportEvent
	Renderer    imagegen.Generator // nil when image generation is off
	Logger      *zap.Logger

	// ResetClearsSubject is the reset behavior when a request does not choose.
	ResetClearsSubject bool
}

// NewAPIRouter creates a chi sub-router for /api/v1. Callers must wrap it in
// the session manager's LoadAndSave middleware.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	ws := &workspaceHandler{workspaces: deps.Workspaces, resetClearsSubject: deps.ResetClearsSubject, logger: deps.Logger}
	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/workspace", ws.Get)
		r.Put("/workspace/domain", ws.SetDomain)
		r.Put("/workspace/subject", ws.SetSubject)
		r.Post("/workspace/tags/toggle", ws.ToggleTag)
		r.Post("/workspace/categories", ws.CreateCategory)
		r.Post("/workspace/categories/{id}/custom-tags", ws.AddCustomTag)
		r.Delete("/workspace/categories/{id}/custom-tags/{tag}", ws.RemoveCustomTag)
		r.Post("/workspace/reset", ws.Reset)

		ex := &exportsHandler{workspaces: deps.Workspaces, exports: deps.ExportStore, ch: deps.ExportCh, logger: deps.Logger}
		r.Post("/exports", ex.Create)
		r.Get("/exports", ex.List)
		r.Get("/exports/stats", ex.Stats)
		r.Get("/exports/{id}", ex.Get)

		rh := &renderHandler{workspaces: deps.Workspaces, renderer: deps.Renderer, logger: deps.Logger}
		r.Post("/render", rh.Render)
	})

	// The prompt is plain text so it can be piped straight to a clipboard.
	r.Get("/prompt", (&promptHandler{workspaces: deps.Workspaces}).Get)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
