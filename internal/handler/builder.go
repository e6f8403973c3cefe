package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/auth"
	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/input"
	"github.com/joestump/kernel-prism/internal/kernel"
	"github.com/joestump/kernel-prism/internal/metrics"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
)

// DomainTab is one entry of the domain switcher.
type DomainTab struct {
	Domain kernel.Domain
	Label  string
	Active bool
}

// BuilderPage is the data for the builder page and its fragments.
type BuilderPage struct {
	BasePage
	View               kernel.View
	Tabs               []DomainTab
	Title              string
	Placeholder        string
	ResetClearsSubject bool
	RenderEnabled      bool
	Flash              *Flash
	RenderFlash        *Flash
	ImageURL           template.URL
}

// BuilderHandler serves the interactive prompt builder.
type BuilderHandler struct {
	workspaces         *session.Workspaces
	exports            chan<- store.ExportEvent
	renderer           imagegen.Generator
	resetClearsSubject bool
	authEnabled        bool
	logger             *zap.Logger
}

// NewBuilderHandler creates a BuilderHandler. renderer may be nil.
func NewBuilderHandler(ws *session.Workspaces, exports chan<- store.ExportEvent, renderer imagegen.Generator, resetClearsSubject, authEnabled bool, logger *zap.Logger) *BuilderHandler {
	return &BuilderHandler{
		workspaces:         ws,
		exports:            exports,
		renderer:           renderer,
		resetClearsSubject: resetClearsSubject,
		authEnabled:        authEnabled,
		logger:             logger,
	}
}

func (h *BuilderHandler) page(r *http.Request, w *kernel.Workspace) BuilderPage {
	start := time.Now()
	v := w.View()
	metrics.ObserveCompile(v.Domain.String(), start)

	tabs := make([]DomainTab, 0, 3)
	for _, d := range kernel.Domains() {
		tabs = append(tabs, DomainTab{Domain: d, Label: d.Label(), Active: d == v.Domain})
	}
	return BuilderPage{
		BasePage: BasePage{
			Theme:       themeFromRequest(r),
			User:        auth.IdentityFromContext(r.Context()),
			AuthEnabled: h.authEnabled,
		},
		View:               v,
		Tabs:               tabs,
		Title:              v.Domain.Title(),
		Placeholder:        v.Domain.Placeholder(),
		ResetClearsSubject: h.resetClearsSubject,
		RenderEnabled:      h.renderer != nil,
	}
}

// Show handles GET /.
func (h *BuilderHandler) Show(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		h.logger.Warn("discarding unreadable workspace", zap.Error(err))
		ws = h.workspaces.New()
	}
	render(w, "builder.html", h.page(r, ws))
}

// apply runs fn against the session workspace and answers with the builder
// fragment for HTMX or a redirect to / otherwise.
func (h *BuilderHandler) apply(w http.ResponseWriter, r *http.Request, op string, fn func(*kernel.Workspace)) {
	ws, err := h.workspaces.Update(r.Context(), fn)
	if err != nil {
		h.logger.Error("workspace update failed", zap.String("op", op), zap.Error(err))
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	metrics.WorkspaceMutationsTotal.WithLabelValues(op).Inc()

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	fragment := "builder"
	if op == "subject" {
		fragment = "output"
	}
	renderFragment(w, fragment, h.page(r, ws))
}

// reject reports an input error. HTMX requests get the builder fragment with
// an error flash so the message is swapped in place.
func (h *BuilderHandler) reject(w http.ResponseWriter, r *http.Request, msg string) {
	if !isHTMX(r) {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	data := h.page(r, ws)
	data.Flash = &Flash{Type: "error", Message: msg}
	renderFragment(w, "builder", data)
}

// SetDomain handles POST /builder/domain.
func (h *BuilderHandler) SetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := kernel.ParseDomain(r.FormValue("domain"))
	if err != nil {
		h.reject(w, r, "Unknown domain.")
		return
	}
	h.apply(w, r, "domain", func(ws *kernel.Workspace) { ws.SetDomain(d) })
}

// SetSubject handles POST /builder/subject.
func (h *BuilderHandler) SetSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := input.Subject(r.FormValue("subject"))
	if err != nil {
		h.reject(w, r, "Subject is too long.")
		return
	}
	h.apply(w, r, "subject", func(ws *kernel.Workspace) { ws.SetSubject(subject) })
}

// ToggleTag handles POST /builder/tags/toggle.
func (h *BuilderHandler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	tag := r.FormValue("tag")
	if tag == "" {
		h.reject(w, r, "Missing tag.")
		return
	}
	h.apply(w, r, "toggle", func(ws *kernel.Workspace) { ws.ToggleTag(tag) })
}

// CreateCategory handles POST /builder/categories.
func (h *BuilderHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name, err := input.CategoryName(r.FormValue("name"))
	if err != nil {
		// A blank name is a no-op, matching a dismissed dialog.
		if errors.Is(err, input.ErrEmpty) {
			h.apply(w, r, "noop", func(*kernel.Workspace) {})
			return
		}
		h.reject(w, r, "Category name is too long.")
		return
	}
	h.apply(w, r, "create_category", func(ws *kernel.Workspace) { ws.CreateCategory(name) })
}

// AddCustomTag handles POST /builder/categories/{id}/tags.
func (h *BuilderHandler) AddCustomTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag, err := input.Tag(r.FormValue("tag"))
	if err != nil {
		if errors.Is(err, input.ErrEmpty) {
			h.apply(w, r, "noop", func(*kernel.Workspace) {})
			return
		}
		h.reject(w, r, "Tag is too long.")
		return
	}
	h.apply(w, r, "add_custom", func(ws *kernel.Workspace) { ws.AddCustomTag(id, tag) })
}

// RemoveCustomTag handles DELETE /builder/categories/{id}/tags?tag=...
func (h *BuilderHandler) RemoveCustomTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag := r.FormValue("tag")
	h.apply(w, r, "remove_custom", func(ws *kernel.Workspace) { ws.RemoveCustomTag(id, tag) })
}

// Reset handles POST /builder/reset.
func (h *BuilderHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "reset", func(ws *kernel.Workspace) {
		if h.resetClearsSubject {
			ws.ResetDomainAndSubject()
		} else {
			ws.ResetDomain()
		}
	})
}

// Copy handles POST /builder/copy. The browser writes the clipboard; the
// server records the export and echoes the prompt it recorded.
func (h *BuilderHandler) Copy(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	start := time.Now()
	prompt := ws.Prompt()
	metrics.ObserveCompile(ws.Domain().String(), start)

	store.Enqueue(h.exports, store.ExportEvent{
		SessionKey: h.workspaces.Key(r.Context()),
		UserSub:    auth.SubjectFromContext(r.Context()),
		Domain:     ws.Domain().String(),
		Subject:    ws.Subject(),
		Prompt:     prompt,
	})

	trigger, _ := json.Marshal(map[string]any{"promptCopied": map[string]string{"domain": ws.Domain().String()}})
	w.Header().Set("HX-Trigger", string(trigger))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(prompt))
}

// Render handles POST /builder/render.
func (h *BuilderHandler) Render(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	data := h.page(r, ws)

	if h.renderer == nil {
		if !isHTMX(r) {
			http.Error(w, "image generation is not configured", http.StatusServiceUnavailable)
			return
		}
		data.RenderFlash = &Flash{Type: "warning", Message: "Image generation is not configured."}
		renderFragment(w, "render_result", data)
		return
	}

	img, err := h.renderer.Render(r.Context(), data.View.Prompt)
	switch {
	case errors.Is(err, imagegen.ErrRateLimited):
		data.RenderFlash = &Flash{Type: "warning", Message: "Too many renders. Try again in a minute."}
	case errors.Is(err, imagegen.ErrNoImage):
		data.RenderFlash = &Flash{Type: "error", Message: "No image was returned."}
	case err != nil:
		h.logger.Error("render failed", zap.Error(err))
		data.RenderFlash = &Flash{Type: "error", Message: "Image generation failed."}
	default:
		data.ImageURL = template.URL(img.DataURL())
	}

	if !isHTMX(r) {
		if err != nil {
			http.Error(w, data.RenderFlash.Message, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", img.MIMEType)
		_, _ = w.Write(img.Data)
		return
	}
	renderFragment(w, "render_result", data)
}
