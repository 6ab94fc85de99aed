package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-api/internal/domain"
	"mca-api/internal/repository/memory"
	apperrors "mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// fakeOsu serves the token and /me endpoints of the osu! API
func fakeOsu(t *testing.T, profile domain.OsuProfile) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"osu-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/v2/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer osu-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, baseURL string) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(Config{
		ClientID:      "123",
		ClientSecret:  "secret",
		RedirectURL:   "http://localhost:8080/api/login/osu/callback",
		BaseURL:       baseURL,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
	}, store.Repositories().Users, logger.NewNop())
	return svc, store
}

func TestAuthCodeURL(t *testing.T) {
	svc, _ := newTestService(t, "")

	u, err := url.Parse(svc.AuthCodeURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "osu.ppy.sh", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "state-123", u.Query().Get("state"))
	assert.Equal(t, "123", u.Query().Get("client_id"))
	assert.Equal(t, "identify public", u.Query().Get("scope"))
}

func TestLogin(t *testing.T) {
	joined := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC)
	srv := fakeOsu(t, domain.OsuProfile{ID: 4242, Username: "peppy", AvatarURL: "https://a.ppy.sh/4242", JoinDate: joined})
	svc, _ := newTestService(t, srv.URL)
	ctx := context.Background()

	user, token, err := svc.Login(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, 4242, user.OsuID)
	assert.Equal(t, "peppy", user.Username)
	assert.True(t, joined.Equal(user.RegisteredAt))
	assert.NotEmpty(t, token)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	again, _, err := svc.Login(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "second login reuses the account")
}

func TestLogin_BadCode(t *testing.T) {
	srv := fakeOsu(t, domain.OsuProfile{ID: 1})
	svc, _ := newTestService(t, srv.URL)

	_, _, err := svc.Login(context.Background(), "bad-code")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestAuthenticate(t *testing.T) {
	svc, store := newTestService(t, "")
	user := store.AddUser(domain.User{OsuID: 7, Username: "nominator"})

	valid, err := svc.IssueSession(&user)
	require.NoError(t, err)

	expired := *svc
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.IssueSession(&user)
	require.NoError(t, err)

	otherKey := *svc
	otherKey.secret = []byte("another-secret")
	forged, err := otherKey.IssueSession(&user)
	require.NoError(t, err)

	ghost := domain.User{ID: 999, OsuID: 9}
	ghostToken, err := svc.IssueSession(&ghost)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": user.ID, "iss": sessionIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		ok    bool
	}{
		{"valid session", valid, true},
		{"expired session", expiredToken, false},
		{"signed with another key", forged, false},
		{"user deleted", ghostToken, false},
		{"unsigned token", unsigned, false},
		{"garbage", "not-a-token", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.token)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, user.ID, got.ID)
				return
			}
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
		})
	}
}

func TestSessionCookie(t *testing.T) {
	svc, _ := newTestService(t, "")

	c := svc.SessionCookie("token")
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)
}
