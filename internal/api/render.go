package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/session"
)

type renderHandler struct {
	workspaces *session.Workspaces
	renderer   imagegen.Generator
	logger     *zap.Logger
}

// Render generates an image from the current prompt.
// POST /api/v1/render
func (h *renderHandler) Render(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, "image generation is not configured", "IMAGEGEN_DISABLED")
		return
	}
	ws, err := h.workspaces.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error", "INTERNAL_ERROR")
		return
	}
	prompt := ws.Prompt()

	img, err := h.renderer.Render(r.Context(), prompt)
	switch {
	case errors.Is(err, imagegen.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error(), "RATE_LIMITED")
		return
	case errors.Is(err, imagegen.ErrNoImage):
		writeError(w, http.StatusBadGateway, err.Error(), "NO_IMAGE")
		return
	case err != nil:
		h.logger.Error("render failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "image generation failed", "UPSTREAM_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{
		MIMEType: img.MIMEType,
		DataURL:  img.DataURL(),
		Prompt:   prompt,
	})
}
