package container

import (
	"context"
	"fmt"

	"mca-api/internal/config"
	"mca-api/internal/event"
	"mca-api/internal/repository"
	"mca-api/internal/repository/memory"
	"mca-api/internal/service"
	"mca-api/internal/service/auth"
	"mca-api/pkg/database"
	"mca-api/pkg/logger"
	"mca-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	RabbitMQ     *event.RabbitMQConnection
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container. Redis and RabbitMQ are
// optional: when they are unconfigured or unreachable the service runs without
// caching and logs events instead of publishing them.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		c.Repositories = memory.NewStore().Repositories()
	default:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
		c.Repositories = repository.NewPostgresRepositories(db)
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			c.RedisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	var publisher service.EventPublisher = event.NewLogPublisher(log)
	if cfg.RabbitMQURL != "" {
		conn, err := event.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, log)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to RabbitMQ, nomination events will only be logged")
		} else {
			c.RabbitMQ = conn
			publisher = event.NewNominationPublisher(conn, log)
		}
	}

	cache := service.NewCacheService(c.RedisClient, log.Logger)
	c.Repositories = cache.WithCache(c.Repositories)
	repos := c.Repositories

	phases := service.NewPhaseGate(repos.AwardCycles, nil)
	c.Services = &service.Services{
		Auth: auth.NewService(auth.Config{
			ClientID:      cfg.OsuClientID,
			ClientSecret:  cfg.OsuClientSecret,
			RedirectURL:   cfg.OsuRedirectURL,
			BaseURL:       cfg.OsuBaseURL,
			SessionSecret: cfg.SessionSecret,
			SessionTTL:    cfg.SessionTTL,
			SecureCookies: cfg.IsProduction(),
		}, repos.Users, log),
		Nominations: service.NewNominationService(
			phases,
			service.NewEligibilityEvaluator(cfg.EligibilityMinActivity),
			repos,
			publisher,
			log,
		),
		Phases:    phases,
		Cache:     cache,
		RateLimit: service.NewRateLimiter(c.RedisClient, cfg.RateLimitWritesPerMinute, log),
	}

	return c, nil
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
