package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mca-api/internal/domain"
	"mca-api/internal/service"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// NominatingHandler serves the nominating page API
type NominatingHandler struct {
	nominations *service.NominationService
	phases      *service.PhaseGate
	logger      *logger.Logger
}

func NewNominatingHandler(nominations *service.NominationService, phases *service.PhaseGate, log *logger.Logger) *NominatingHandler {
	return &NominatingHandler{
		nominations: nominations,
		phases:      phases,
		logger:      log,
	}
}

// RegisterRoutes mounts the nominating routes on r. Every route needs an
// authenticated user; writeLimit wraps the create and delete routes.
func (h *NominatingHandler) RegisterRoutes(r chi.Router, authenticate, writeLimit func(http.Handler) http.Handler) {
	r.Route("/nominating", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.With(writeLimit).Post("/create", h.Create)
		r.With(writeLimit).Delete("/nominations/{id}", h.Delete)

		r.Route("/{year}", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/search", h.Search)
			r.With(writeLimit).Post("/create", h.Create)
			r.With(writeLimit).Delete("/nominations/{id}", h.Delete)
			// DELETE /{id} addresses a nomination of the default year
			r.With(writeLimit).Delete("/", h.DeleteByID)
		})
	})
}

func (h *NominatingHandler) year(r *http.Request) int {
	return h.phases.ResolveYear(chi.URLParam(r, "year"))
}

// List handles GET /api/nominating[/{year}]
func (h *NominatingHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.nominations.List(r.Context(), user, h.year(r))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Search handles GET /api/nominating[/{year}]/search
func (h *NominatingHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	categoryID, err := strconv.Atoi(q.Get("category"))
	if err != nil || categoryID <= 0 {
		respondError(w, r, errors.NewValidationError("Invalid category", map[string]interface{}{
			"category": q.Get("category"),
		}), h.logger)
		return
	}

	skip, _ := strconv.Atoi(q.Get("skip"))
	if skip < 0 {
		skip = 0
	}

	result, rejection, err := h.nominations.Search(r.Context(), user, h.year(r), domain.SearchRequest{
		CategoryID: categoryID,
		Text:       q.Get("text"),
		Skip:       skip,
		Order:      domain.ParseSearchOrder(q.Get("order")),
	})
	switch {
	case err != nil:
		respondError(w, r, err, h.logger)
	case rejection != nil:
		respondRejection(w, rejection)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

// Create handles POST /api/nominating[/{year}]/create
func (h *NominatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req domain.CreateNominationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}
	if req.CategoryID <= 0 || req.NomineeID <= 0 {
		respondError(w, r, errors.NewValidationError("categoryId and nomineeId are required", map[string]interface{}{
			"categoryId": req.CategoryID,
			"nomineeId":  req.NomineeID,
		}), h.logger)
		return
	}

	nomination, rejection, err := h.nominations.Create(r.Context(), user, h.year(r), req)
	switch {
	case err != nil:
		respondError(w, r, err, h.logger)
	case rejection != nil:
		respondRejection(w, rejection)
	default:
		respondJSON(w, http.StatusOK, nomination)
	}
}

// Delete handles DELETE /api/nominating[/{year}]/nominations/{id}
func (h *NominatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "id"), h.year(r))
}

// DeleteByID handles DELETE /api/nominating/{id}
func (h *NominatingHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "year"), h.phases.ResolveYear(""))
}

func (h *NominatingHandler) delete(w http.ResponseWriter, r *http.Request, rawID string, year int) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		respondError(w, r, errors.NewValidationError("Invalid nomination id", nil), h.logger)
		return
	}

	rejection, err := h.nominations.Delete(r.Context(), user, year, id)
	switch {
	case err != nil:
		respondError(w, r, err, h.logger)
	case rejection != nil:
		respondRejection(w, rejection)
	default:
		respondJSON(w, http.StatusOK, map[string]string{"success": "ok"})
	}
}
