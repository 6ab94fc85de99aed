package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"mca-api/internal/config"
	"mca-api/internal/container"
	"mca-api/internal/event"
	"mca-api/internal/handler"
	"mca-api/internal/middleware"
	"mca-api/pkg/database"
	"mca-api/pkg/errors"
	"mca-api/pkg/logger"
	"mca-api/pkg/redis"
)

const version = "1.0.0"

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	rabbitMQ    *event.RabbitMQConnection
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting requests before closing what they depend on
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.rabbitMQ != nil {
		r.log.Info("Closing RabbitMQ connection...")
		if err := r.rabbitMQ.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close RabbitMQ connection")
			errs = append(errs, fmt.Errorf("RabbitMQ close: %w", err))
		} else {
			r.log.Info("RabbitMQ connection closed successfully")
		}
	}

	if r.redisClient != nil {
		r.log.Info("Closing Redis connection...")

		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := r.redisClient.Health(healthCtx); err != nil {
			r.log.WithError(err).Warn("Redis health check failed before closing")
		}
		healthCancel()

		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed successfully")
		}
	}

	if r.db != nil {
		r.log.Info("Closing database connection pool...")

		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := r.db.Health(healthCtx); err != nil {
			r.log.WithError(err).Warn("Database health check failed before closing")
		}
		healthCancel()

		r.db.Close()
		r.log.Info("Database connection pool closed successfully")
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logFile *logger.FileOptions
	if cfg.LogFile != "" {
		logFile = &logger.FileOptions{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
		}
	}
	log, err := logger.NewWithFile(cfg.LogLevel, logFile)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.WithFields(map[string]interface{}{
		"port":         cfg.Port,
		"log_level":    cfg.LogLevel,
		"environment":  cfg.Environment,
		"store_driver": cfg.StoreDriver,
	}).Info("Starting mca-api server")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(startupCtx, cfg, log)
	startupCancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        setupRouter(c),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          c.DB,
		redisClient: c.RedisClient,
		rabbitMQ:    c.RabbitMQ,
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins), log))
	r.Use(middleware.RequestID())
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(20 * time.Second))

	authenticate := middleware.Auth(services.Auth, log)
	writeLimit := middleware.RateLimit(services.RateLimit, "nominating", log)

	healthHandler := handler.NewHealthHandler(version, log)
	if c.DB != nil {
		healthHandler.AddCheck("postgres", c.DB.Health)
	}
	if c.RedisClient != nil {
		healthHandler.AddCheck("redis", services.Cache.HealthCheck)
	}
	if c.RabbitMQ != nil {
		healthHandler.AddCheck("rabbitmq", func(context.Context) error {
			if !c.RabbitMQ.IsHealthy() {
				return fmt.Errorf("connection closed")
			}
			return nil
		})
	}

	authHandler := handler.NewAuthHandler(services.Auth, cfg.FrontendURL, cfg.IsProduction(), log)
	nominatingHandler := handler.NewNominatingHandler(services.Nominations, services.Phases, log)
	cycleHandler := handler.NewCycleHandler(services.Phases, log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticate)
		r.Get("/cycles/{year}", cycleHandler.Get)
		nominatingHandler.RegisterRoutes(r, authenticate, writeLimit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteJSON(w, errors.NewNotFoundError("Endpoint not found"), middleware.RequestIDFromContext(r.Context()))
	})

	log.Info("Router configured successfully")
	return r
}
