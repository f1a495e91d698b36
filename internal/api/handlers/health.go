package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/caseylessard/hilljump-sub001/internal/api/response"
	"github.com/caseylessard/hilljump-sub001/internal/infra/database/postgres"
)

// HealthHandler handles liveness checks
type HealthHandler struct {
	pool *postgres.Pool
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Health reports service and database status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.Ping(pingCtx); err != nil {
			response.Error(w, r, http.StatusServiceUnavailable, response.ErrCodeDatabaseError, "Database unreachable")
			return
		}
	}

	response.Success(w, r, map[string]string{
		"status":   "ok",
		"database": "ok",
	})
}
