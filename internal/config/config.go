// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSecretLength is the minimum required length for secrets.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"LINKFOLIO_DB_PATH" envDefault:"./data/linkfolio.db"`
	SessionSecret string `env:"LINKFOLIO_SESSION_SECRET,required"`
	ServerHost    string `env:"LINKFOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LINKFOLIO_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LINKFOLIO_ENV" envDefault:"development"`
	LogLevel      string `env:"LINKFOLIO_LOG_LEVEL" envDefault:"info"`

	// Upload ticket signing
	UploadSecret    string `env:"LINKFOLIO_UPLOAD_SECRET,required"` // HMAC key for signed upload tickets
	UploadBaseURL   string `env:"LINKFOLIO_UPLOAD_BASE_URL" envDefault:"https://media.linkfolio.example"`
	UploadTicketTTL int    `env:"LINKFOLIO_UPLOAD_TICKET_TTL" envDefault:"300"` // Ticket lifetime in seconds

	// Cache configuration
	RedisURL    string `env:"LINKFOLIO_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix string `env:"LINKFOLIO_CACHE_PREFIX" envDefault:"lf:"`      // Redis key prefix
	CacheTTL    int    `env:"LINKFOLIO_CACHE_TTL" envDefault:"300"`         // Public page cache TTL in seconds

	// API rate limiting
	RateLimitRPS   float64 `env:"LINKFOLIO_RATE_LIMIT_RPS" envDefault:"10"`  // Requests per second per client
	RateLimitBurst int     `env:"LINKFOLIO_RATE_LIMIT_BURST" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for name, secret := range map[string]string{
		"LINKFOLIO_SESSION_SECRET": cfg.SessionSecret,
		"LINKFOLIO_UPLOAD_SECRET":  cfg.UploadSecret,
	} {
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("%s must be at least %d bytes long, got %d bytes; "+
				"generate a secure secret with: openssl rand -base64 32",
				name, MinSecretLength, len(secret))
		}
		for _, weak := range knownWeakSecrets {
			if secret == weak {
				return nil, fmt.Errorf("%s is a known default value and must not be used; "+
					"generate a secure secret with: openssl rand -base64 32", name)
			}
		}
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("LINKFOLIO_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
