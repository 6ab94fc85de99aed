package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mca-api/internal/domain"
	"mca-api/internal/service"
	"mca-api/internal/service/auth"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
	"mca-api/pkg/redis"
)

type stubAuth struct {
	service.AuthService
	users map[string]*domain.User
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, errors.NewAuthenticationError("Invalid or expired session")
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"id": user.ID})
}

func TestAuth(t *testing.T) {
	authSvc := &stubAuth{users: map[string]*domain.User{"good": {ID: 7, Username: "nominator"}}}
	h := RequestID()(Auth(authSvc, logger.NewNop())(http.HandlerFunc(whoAmI)))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"bearer token", "Bearer good", "", http.StatusOK},
		{"session cookie", "", "good", http.StatusOK},
		{"header wins over cookie", "Bearer bad", "good", http.StatusUnauthorized},
		{"no credentials", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", "", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/nominating", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":7}`, rec.Body.String())
				return
			}

			var body errors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, errors.ErrorTypeAuthentication, body.Error.Type)
			assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Error.RequestID)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "upstream-id", seen)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limiter := service.NewRateLimiter(client, 2, logger.NewNop())
	h := RateLimit(limiter, "nominating", logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID int) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/nominating/create", nil)
		req = req.WithContext(WithUser(req.Context(), &domain.User{ID: userID}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send(1).Code)
	rec := send(1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = send(1)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send(2).Code, "other users are unaffected")

	mr.Close()
	assert.Equal(t, http.StatusOK, send(1).Code, "limiter fails open")
}

func TestCORS(t *testing.T) {
	h := CORS(DefaultCORSConfig([]string{"https://mca.example"}), logger.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed bool
	}{
		{"allowed origin", http.MethodGet, "https://mca.example", http.StatusOK, true},
		{"foreign origin", http.MethodGet, "https://evil.example", http.StatusOK, false},
		{"preflight", http.MethodOptions, "https://mca.example", http.StatusNoContent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/nominating", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantAllowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
			if tt.method == http.MethodOptions {
				assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
