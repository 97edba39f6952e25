// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"AWA_DB_PATH" envDefault:"./data/awacms.db"`
	TokenSecret   string `env:"AWA_TOKEN_SECRET,required"` // Signs API bearer tokens and portal sessions
	ServerHost    string `env:"AWA_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"AWA_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"AWA_ENV" envDefault:"development"`
	LogLevel      string `env:"AWA_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"AWA_UPLOADS_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"AWA_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// CORS configuration for the dashboard/site SPAs
	AllowedOrigins []string `env:"AWA_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	// Cache configuration
	RedisURL     string `env:"AWA_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"AWA_CACHE_PREFIX" envDefault:"awacms:"` // Redis key prefix
	CacheTTL     int    `env:"AWA_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"AWA_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration (login audit enrichment)
	GeoIPDBPath string `env:"AWA_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Translation assist (optional; disabled when the key is empty)
	TranslateAPIKey  string `env:"AWA_TRANSLATE_API_KEY"`
	TranslateBaseURL string `env:"AWA_TRANSLATE_BASE_URL" envDefault:"https://api.openai.com/v1"`
	TranslateModel   string `env:"AWA_TRANSLATE_MODEL" envDefault:"gpt-4o-mini"`

	// Seeding configuration
	DoSeed bool `env:"AWA_DO_SEED" envDefault:"false"` // Enable database seeding
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

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// TranslateEnabled returns true if the translation assist service is configured.
func (c Config) TranslateEnabled() bool {
	return c.TranslateAPIKey != ""
}

// MinTokenSecretLength is the minimum required length for the token secret.
const MinTokenSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate token secret length
	if len(cfg.TokenSecret) < MinTokenSecretLength {
		return nil, fmt.Errorf("AWA_TOKEN_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinTokenSecretLength, len(cfg.TokenSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.TokenSecret == weak {
			return nil, fmt.Errorf("AWA_TOKEN_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.TokenSecret) {
		slog.Warn("AWA_TOKEN_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
