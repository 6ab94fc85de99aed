package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mca-api/internal/service"
	"mca-api/pkg/logger"
)

// CycleHandler exposes the award cycle state
type CycleHandler struct {
	phases *service.PhaseGate
	logger *logger.Logger
}

func NewCycleHandler(phases *service.PhaseGate, log *logger.Logger) *CycleHandler {
	return &CycleHandler{phases: phases, logger: log}
}

// Get handles GET /api/cycles/{year}
func (h *CycleHandler) Get(w http.ResponseWriter, r *http.Request) {
	year := h.phases.ResolveYear(chi.URLParam(r, "year"))

	cycle, err := h.phases.Cycle(r.Context(), year)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=10")
	respondJSON(w, http.StatusOK, cycle)
}
