package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"mca-api/internal/domain"
	"mca-api/internal/service"
	"mca-api/internal/service/auth"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the authenticated user in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// RequestIDFromContext returns the request ID set by RequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// Auth creates an authentication middleware. The session token is read from
// the Authorization header or, for browser clients, the session cookie.
func Auth(authService service.AuthService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := sessionToken(r)
			if appErr != nil {
				writeErrorResponse(w, r, appErr, log)
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				writeErrorResponse(w, r, errors.AsAppError(err), log)
				return
			}

			log.WithField("user_id", user.ID).Debug("User authenticated successfully")
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func sessionToken(r *http.Request) (string, *errors.AppError) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", errors.NewAuthenticationError("Invalid authorization header format")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return "", errors.NewAuthenticationError("Token is required")
		}
		return token, nil
	}

	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errors.NewAuthenticationError("Authentication is required")
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, log *logger.Logger) {
	entry := log.WithError(appErr).WithField("path", r.URL.Path)
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Debug("Request rejected")
	}
	errors.WriteJSON(w, appErr, RequestIDFromContext(r.Context()))
}
