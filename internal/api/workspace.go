package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/input"
	"github.com/joestump/kernel-prism/internal/kernel"
	"github.com/joestump/kernel-prism/internal/metrics"
	"github.com/joestump/kernel-prism/internal/session"
)

// pathParam returns a URL parameter with any remaining escapes decoded.
// chi matches on RawPath when the path holds an escaped slash.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

type workspaceHandler struct {
	workspaces         *session.Workspaces
	resetClearsSubject bool
	logger             *zap.Logger
}

func view(ws *kernel.Workspace) WorkspaceResponse {
	start := time.Now()
	v := ws.View()
	metrics.ObserveCompile(v.Domain.String(), start)
	return toWorkspaceResponse(v)
}

// update applies fn to the session workspace and writes the resulting view.
func (h *workspaceHandler) update(w http.ResponseWriter, r *http.Request, op string, fn func(*kernel.Workspace)) (*kernel.Workspace, bool) {
	ws, err := h.workspaces.Update(r.Context(), fn)
	if err != nil {
		h.logger.Error("workspace update failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session error", "INTERNAL_ERROR")
		return nil, false
	}
	metrics.WorkspaceMutationsTotal.WithLabelValues(op).Inc()
	return ws, true
}

// Get returns the active domain's state and compiled prompt.
// GET /api/v1/workspace
func (h *workspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, view(ws))
}

// SetDomain switches the active domain.
// PUT /api/v1/workspace/domain
func (h *workspaceHandler) SetDomain(w http.ResponseWriter, r *http.Request) {
	var req SetDomainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := kernel.ParseDomain(req.Domain)
	if err != nil {
		writeError(w, http.StatusBadRequest, "domain must be one of image, app, free", "INVALID_DOMAIN")
		return
	}
	if ws, ok := h.update(w, r, "domain", func(ws *kernel.Workspace) { ws.SetDomain(d) }); ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}

// SetSubject replaces the subject. The value is stored verbatim.
// PUT /api/v1/workspace/subject
func (h *workspaceHandler) SetSubject(w http.ResponseWriter, r *http.Request) {
	var req SetSubjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	subject, err := input.Subject(req.Subject)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "SUBJECT_TOO_LONG")
		return
	}
	if ws, ok := h.update(w, r, "subject", func(ws *kernel.Workspace) { ws.SetSubject(subject) }); ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}

// ToggleTag flips a tag in the active domain's selection.
// POST /api/v1/workspace/tags/toggle
func (h *workspaceHandler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required", "BAD_REQUEST")
		return
	}
	if ws, ok := h.update(w, r, "toggle", func(ws *kernel.Workspace) { ws.ToggleTag(req.Tag) }); ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}

// CreateCategory appends a custom category to the active domain.
// POST /api/v1/workspace/categories
func (h *workspaceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := input.CategoryName(req.Name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "name: "+err.Error(), "INVALID_NAME")
		return
	}
	var created kernel.Category
	ws, ok := h.update(w, r, "create_category", func(ws *kernel.Workspace) { created = ws.CreateCategory(name) })
	if !ok {
		return
	}
	resp := CreateCategoryResponse{Workspace: view(ws)}
	for _, c := range resp.Workspace.Categories {
		if c.ID == created.ID {
			resp.Category = c
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// AddCustomTag prepends a custom tag to a category. The category id is not
// checked against the catalog.
// POST /api/v1/workspace/categories/{id}/custom-tags
func (h *workspaceHandler) AddCustomTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := input.Tag(req.Tag)
	if err != nil {
		code := "INVALID_TAG"
		if errors.Is(err, input.ErrEmpty) {
			code = "EMPTY_TAG"
		}
		writeError(w, http.StatusUnprocessableEntity, "tag: "+err.Error(), code)
		return
	}
	if ws, ok := h.update(w, r, "add_custom", func(ws *kernel.Workspace) { ws.AddCustomTag(id, tag) }); ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}

// RemoveCustomTag removes one custom tag from a category. Removing an absent
// tag is not an error.
// DELETE /api/v1/workspace/categories/{id}/custom-tags/{tag}
func (h *workspaceHandler) RemoveCustomTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag := pathParam(r, "tag")
	if ws, ok := h.update(w, r, "remove_custom", func(ws *kernel.Workspace) { ws.RemoveCustomTag(id, tag) }); ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}

// Reset restores the active domain's defaults. Other domains are untouched.
// POST /api/v1/workspace/reset
func (h *workspaceHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	clearSubject := h.resetClearsSubject
	if req.ClearSubject != nil {
		clearSubject = *req.ClearSubject
	}
	ws, ok := h.update(w, r, "reset", func(ws *kernel.Workspace) {
		if clearSubject {
			ws.ResetDomainAndSubject()
		} else {
			ws.ResetDomain()
		}
	})
	if ok {
		writeJSON(w, http.StatusOK, view(ws))
	}
}
