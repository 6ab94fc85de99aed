package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mca-api/internal/service"
	"mca-api/internal/service/auth"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

const stateCookieTTL = 10 * time.Minute

// AuthHandler handles the osu! login flow and the session
type AuthHandler struct {
	auth          service.AuthService
	frontendURL   string
	secureCookies bool
	logger        *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, frontendURL string, secureCookies bool, log *logger.Logger) *AuthHandler {
	if frontendURL == "" {
		frontendURL = "/"
	}
	return &AuthHandler{
		auth:          authService,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
		logger:        log,
	}
}

// RegisterRoutes mounts the login routes on r. authenticate guards the profile route.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Get("/login/osu", h.Login)
	r.Get("/login/osu/callback", h.Callback)
	r.Post("/logout", h.Logout)
	r.With(authenticate).Get("/user/profile", h.GetProfile)
}

// Login handles GET /api/login/osu
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookieName,
		Value:    state,
		Path:     "/api/login/osu",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/login/osu/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stateCookie, err := r.Cookie(auth.StateCookieName)
	if err != nil || stateCookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(q.Get("state"))) != 1 {
		respondError(w, r, errors.NewAuthenticationError("Invalid login state"), h.logger)
		return
	}
	h.clearCookie(w, auth.StateCookieName, "/api/login/osu")

	if osuErr := q.Get("error"); osuErr != "" {
		h.logger.WithField("osu_error", osuErr).Info("osu! login was cancelled")
		http.Redirect(w, r, h.frontendURL, http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		respondError(w, r, errors.NewValidationError("Missing authorization code", nil), h.logger)
		return
	}

	_, token, err := h.auth.Login(r.Context(), code)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, h.auth.SessionCookie(token))
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, auth.SessionCookieName, "/")
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetProfile handles GET /api/user/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"success": true,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
