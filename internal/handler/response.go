package handler

import (
	"encoding/json"
	"net/http"

	"mca-api/internal/domain"
	"mca-api/internal/middleware"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// respondJSON writes data with the given status
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondRejection writes a rule rejection. Rejections are part of the
// nominating flow and are returned with 200 so the page can show the message.
func respondRejection(w http.ResponseWriter, rejection *domain.Rejection) {
	respondJSON(w, http.StatusOK, rejection)
}

// respondError writes a hard failure with its status code
func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	appErr := errors.AsAppError(err)
	entry := log.WithError(appErr).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	errors.WriteJSON(w, appErr, middleware.RequestIDFromContext(r.Context()))
}

// currentUser returns the authenticated user or writes a 401
func currentUser(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewAuthenticationError("User not authenticated"), log)
		return nil, false
	}
	return user, true
}
