package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080,http://localhost:5173"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"production"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	RabbitMQURL string `env:"RABBITMQ_URL"`

	SessionSecret   string        `env:"SESSION_SECRET"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	OsuClientID     string        `env:"OSU_CLIENT_ID"`
	OsuClientSecret string        `env:"OSU_CLIENT_SECRET"`
	OsuRedirectURL  string        `env:"OSU_REDIRECT_URL" envDefault:"http://localhost:8080/api/login/osu/callback"`
	OsuBaseURL      string        `env:"OSU_BASE_URL" envDefault:"https://osu.ppy.sh"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:8080/nominating"`

	EligibilityMinActivity   int `env:"ELIGIBILITY_MIN_ACTIVITY" envDefault:"1"`
	RateLimitWritesPerMinute int `env:"RATE_LIMIT_WRITES_PER_MINUTE" envDefault:"30"`
}

// Load loads configuration from the environment, reading .env first if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required values are present
func (c *Config) Validate() error {
	var missing []string

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: expected %s or %s", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.OsuClientID == "" {
		missing = append(missing, "OSU_CLIENT_ID")
	}
	if c.OsuClientSecret == "" {
		missing = append(missing, "OSU_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len(c.SessionSecret) < 32 && c.IsProduction() {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
