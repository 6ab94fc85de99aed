package service

import (
	"context"
	"net/http"

	"mca-api/internal/domain"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// AuthCodeURL returns the osu! authorize URL for a login attempt
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the caller's osu! profile
	Exchange(ctx context.Context, code string) (*domain.OsuProfile, error)

	// Login exchanges the code, stores the user and issues a session token
	Login(ctx context.Context, code string) (*domain.User, string, error)

	// Authenticate resolves a session token to its user
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// SessionCookie builds the cookie carrying a session token
	SessionCookie(token string) *http.Cookie
}

// EventPublisher delivers nomination events to downstream consumers
type EventPublisher interface {
	PublishNominationEvent(ctx context.Context, event domain.NominationEvent) error
}

// Services aggregates the services the HTTP layer depends on
type Services struct {
	Auth        AuthService
	Nominations *NominationService
	Phases      *PhaseGate
	Cache       *CacheService
	RateLimit   *RateLimiter
}
