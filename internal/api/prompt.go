package api

import (
	"net/http"
	"time"

	"github.com/joestump/kernel-prism/internal/metrics"
	"github.com/joestump/kernel-prism/internal/session"
)

type promptHandler struct {
	workspaces *session.Workspaces
}

// Get returns the compiled prompt for the active domain as plain text.
// GET /api/v1/prompt
func (h *promptHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error", "INTERNAL_ERROR")
		return
	}
	start := time.Now()
	prompt := ws.Prompt()
	metrics.ObserveCompile(ws.Domain().String(), start)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Prism-Domain", ws.Domain().String())
	_, _ = w.Write([]byte(prompt))
}
