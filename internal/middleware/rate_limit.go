package middleware

import (
	"net/http"
	"strconv"

	"mca-api/internal/service"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// RateLimit limits write requests per authenticated user within group.
// Must run after Auth. Limiter failures let the request through.
func RateLimit(limiter *service.RateLimiter, group string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			info, err := limiter.Check(r.Context(), user.ID, group)
			if err != nil {
				log.WithError(err).WithField("user_id", user.ID).Warn("Rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(info.Limit, 10))
			remaining := info.Limit - info.RequestCount
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !info.IsAllowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(info.ResetIn.Seconds())))
				log.WithFields(map[string]interface{}{
					"user_id": user.ID,
					"group":   group,
					"count":   info.RequestCount,
				}).Warn("Rate limit exceeded")
				writeErrorResponse(w, r, errors.NewRateLimitError("Too many requests, slow down"), log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
