package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/auth"
	"github.com/joestump/kernel-prism/internal/metrics"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseLimit reads ?limit=, defaulting to 20 and silently capping at 100.
func parseLimit(r *http.Request) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return min(limit, maxLimit)
}

type exportsHandler struct {
	workspaces *session.Workspaces
	exports    store.ExportStoreIface
	ch         chan<- store.ExportEvent
	logger     *zap.Logger
}

// Create records the current prompt as exported.
// POST /api/v1/exports
func (h *exportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error", "INTERNAL_ERROR")
		return
	}
	start := time.Now()
	prompt := ws.Prompt()
	metrics.ObserveCompile(ws.Domain().String(), start)

	queued := store.Enqueue(h.ch, store.ExportEvent{
		SessionKey: h.workspaces.Key(r.Context()),
		UserSub:    auth.SubjectFromContext(r.Context()),
		Domain:     ws.Domain().String(),
		Subject:    ws.Subject(),
		Prompt:     prompt,
	})
	if !queued {
		h.logger.Warn("export dropped", zap.String("domain", ws.Domain().String()))
	}
	writeJSON(w, http.StatusAccepted, QueuedExportResponse{
		Domain: ws.Domain().String(),
		Prompt: prompt,
		Queued: queued,
	})
}

// List returns this session's recent exports, newest first.
// GET /api/v1/exports?limit=
func (h *exportsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.exports.ListBySession(r.Context(), h.workspaces.Key(r.Context()), parseLimit(r))
	if err != nil {
		h.logger.Error("list exports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	resp := ExportListResponse{Exports: make([]ExportResponse, 0, len(rows))}
	for _, x := range rows {
		resp.Exports = append(resp.Exports, toExportResponse(x))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one export. Exports of other sessions are reported as missing.
// GET /api/v1/exports/{id}
func (h *exportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	x, err := h.exports.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && x.SessionKey != h.workspaces.Key(r.Context())) {
		writeError(w, http.StatusNotFound, "export not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, toExportResponse(x))
}

// Stats returns this session's export counts.
// GET /api/v1/exports/stats
func (h *exportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.exports.Stats(r.Context(), h.workspaces.Key(r.Context()))
	if err != nil {
		h.logger.Error("export stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
