// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// APIURL is the fixed origin of the external REST backend.
	APIURL        string `env:"ACADEMY_API_URL" envDefault:"http://localhost:3000"`
	SessionSecret string `env:"ACADEMY_SESSION_SECRET,required"`
	ServerHost    string `env:"ACADEMY_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ACADEMY_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ACADEMY_ENV" envDefault:"development"`
	LogLevel      string `env:"ACADEMY_LOG_LEVEL" envDefault:"info"`
	DBPath        string `env:"ACADEMY_DB_PATH" envDefault:"./data/academy.db"`

	// Session notifications
	RedisURL     string `env:"ACADEMY_REDIS_URL"`                                    // Optional, relays login/logout across instances
	RedisChannel string `env:"ACADEMY_REDIS_CHANNEL" envDefault:"academy:sessions"` // Pub/sub channel name

	// Backend health probe (cron spec)
	HealthSchedule string `env:"ACADEMY_HEALTH_SCHEDULE" envDefault:"@every 1m"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if session events should be relayed through Redis.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ACADEMY_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ACADEMY_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ACADEMY_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := validateAPIURL(cfg.APIURL); err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return cfg, nil
}

// validateAPIURL requires an absolute http(s) URL with a host.
func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("ACADEMY_API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ACADEMY_API_URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("ACADEMY_API_URL must have a host, got %q", raw)
	}
	return nil
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
