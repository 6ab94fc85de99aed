package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("OSU_CLIENT_ID", "123")
	t.Setenv("OSU_CLIENT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", " https://mca.example , ,http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1, cfg.EligibilityMinActivity)
	assert.Equal(t, 30, cfg.RateLimitWritesPerMinute)
	assert.Equal(t, "https://osu.ppy.sh", cfg.OsuBaseURL)
	assert.Equal(t, []string{"https://mca.example", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:     "production",
			StoreDriver:     StoreDriverPostgres,
			DatabaseURL:     "postgres://localhost/mca",
			SessionSecret:   "0123456789abcdef0123456789abcdef",
			SessionTTL:      time.Hour,
			OsuClientID:     "1",
			OsuClientSecret: "s",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"memory without url", func(c *Config) { c.StoreDriver = StoreDriverMemory; c.DatabaseURL = "" }, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "invalid STORE_DRIVER"},
		{"missing osu credentials", func(c *Config) { c.OsuClientID = ""; c.OsuClientSecret = "" }, "OSU_CLIENT_ID, OSU_CLIENT_SECRET"},
		{"short secret in production", func(c *Config) { c.SessionSecret = "short" }, "at least 32"},
		{"short secret in development", func(c *Config) { c.SessionSecret = "short"; c.Environment = "development" }, ""},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
