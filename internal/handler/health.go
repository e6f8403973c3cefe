package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

// HealthHandler reports whether the database is reachable.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a HealthHandler. A nil db always reports healthy.
func NewHealthHandler(db *sqlx.DB) *HealthHandler { return &HealthHandler{db: db} }

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db unreachable\n"))
			return
		}
	}
	_, _ = w.Write([]byte("ok\n"))
}
