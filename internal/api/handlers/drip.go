package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caseylessard/hilljump-sub001/internal/api/response"
	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
	"github.com/caseylessard/hilljump-sub001/internal/service/dripsync"
)

// DripHandler handles DRIP computation HTTP requests
type DripHandler struct {
	service    *dripsync.Service
	resultRepo drip.ResultRepository
}

// NewDripHandler creates a new DripHandler
func NewDripHandler(service *dripsync.Service, resultRepo drip.ResultRepository) *DripHandler {
	return &DripHandler{
		service:    service,
		resultRepo: resultRepo,
	}
}

// GetDrip returns the window map for a ticker, cached or freshly computed
// GET /api/drip/{ticker}
func (h *DripHandler) GetDrip(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		response.BadRequest(w, r, "Ticker is required")
		return
	}

	windows, err := h.service.GetWindows(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, drip.ErrTickerNotFound) {
			response.NotFound(w, r, "Ticker not found")
			return
		}
		response.InternalError(w, r, err)
		return
	}

	response.Success(w, r, windows)
}

// GetStored returns the persisted figures written by the batch job
// GET /api/drip/{ticker}/stored
func (h *DripHandler) GetStored(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		response.BadRequest(w, r, "Ticker is required")
		return
	}

	results, err := h.resultRepo.GetByTicker(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, drip.ErrResultNotFound) {
			response.NotFound(w, r, "No stored results for ticker")
			return
		}
		response.InternalError(w, r, err)
		return
	}

	response.SuccessList(w, r, results, len(results))
}

// Recompute forces a fresh computation for one ticker
// POST /api/drip/{ticker}/recompute
func (h *DripHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		response.BadRequest(w, r, "Ticker is required")
		return
	}

	windows, err := h.service.ComputeTicker(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, drip.ErrTickerNotFound) {
			response.NotFound(w, r, "Ticker not found")
			return
		}
		response.InternalError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, windows, "Recomputed")
}

// RecomputeAll runs a full batch and reports processed/errored counts
// POST /api/drip/recompute-all
func (h *DripHandler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunBatch(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, report, "Batch completed")
}

// GetCacheStats returns result-cache statistics
// GET /api/drip/cache/stats
func (h *DripHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Cache().Stats())
}
