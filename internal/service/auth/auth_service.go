package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

const (
	// SessionCookieName carries the session token for browser clients
	SessionCookieName = "mca_session"
	// StateCookieName carries the OAuth state between login and callback
	StateCookieName = "mca_oauth_state"

	DefaultBaseURL = "https://osu.ppy.sh"
	sessionIssuer  = "mca-api"
)

// Config holds the osu! OAuth client and session settings
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	BaseURL       string
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
}

// Service implements the AuthService interface against osu! OAuth
type Service struct {
	oauth         *oauth2.Config
	baseURL       string
	secret        []byte
	ttl           time.Duration
	secureCookies bool
	users         repository.UserRepository
	httpClient    *http.Client
	logger        *logger.Logger
	now           func() time.Time
}

type sessionClaims struct {
	domain.SessionClaims
	jwt.RegisteredClaims
}

// NewService creates a new auth service
func NewService(cfg Config, users repository.UserRepository, log *logger.Logger) *Service {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify", "public"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + "/oauth/authorize",
				TokenURL:  baseURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		baseURL:       baseURL,
		secret:        []byte(cfg.SessionSecret),
		ttl:           ttl,
		secureCookies: cfg.SecureCookies,
		users:         users,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
		now:    time.Now,
	}
}

// AuthCodeURL returns the osu! authorize URL for state
func (s *Service) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the caller's osu! profile
func (s *Service) Exchange(ctx context.Context, code string) (*domain.OsuProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Warn("osu! code exchange failed")
		return nil, errors.NewAuthenticationError("Failed to log in with osu!")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v2/me", nil)
	if err != nil {
		return nil, errors.NewInternalError("Failed to create profile request", err)
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Failed to call osu! profile endpoint")
		return nil, errors.NewExternalError("Failed to fetch osu! profile", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.WithFields(map[string]interface{}{
			"status_code":   resp.StatusCode,
			"response_body": string(body),
		}).Error("osu! profile endpoint returned error")
		return nil, errors.NewExternalError("Failed to fetch osu! profile",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var profile domain.OsuProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.NewExternalError("Failed to decode osu! profile", err)
	}
	if profile.ID == 0 {
		return nil, errors.NewAuthenticationError("osu! profile has no user id")
	}
	return &profile, nil
}

// Login completes the OAuth flow: exchange, store the user, issue a session
func (s *Service) Login(ctx context.Context, code string) (*domain.User, string, error) {
	profile, err := s.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Upsert(ctx, profile)
	if err != nil {
		return nil, "", errors.NewInternalError("Failed to save user", err)
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"osu_id":  user.OsuID,
	}).Info("User logged in")
	return user, token, nil
}

// IssueSession signs an HS256 session token for user
func (s *Service) IssueSession(user *domain.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		SessionClaims: domain.SessionClaims{
			UserID:   user.ID,
			OsuID:    user.OsuID,
			Username: user.Username,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.NewInternalError("Failed to sign session", err)
	}
	return token, nil
}

// Authenticate validates a session token and loads its user
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		s.logger.WithError(err).Debug("Session token rejected")
		return nil, errors.NewAuthenticationError("Invalid or expired session")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("User no longer exists")
	}
	return user, nil
}

// SessionCookie builds the cookie carrying a session token
func (s *Service) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
