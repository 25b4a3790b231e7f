// Package config provides configuration loading and validation for the agent.
package config

import (
	"time"

	"github.com/kobo-labs/budget-agent/pkg/redis"
)

// Config holds the full runtime configuration of the budget agent.
type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Redis     redis.Config    `mapstructure:"redis"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// HTTPConfig configures the listening server.
type HTTPConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LedgerConfig configures ledger persistence.
type LedgerConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// IdentityConfig configures context-to-user mapping persistence.
type IdentityConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WebhookConfig configures push-notification delivery.
type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// JobsConfig configures the background worker.
type JobsConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// RateLimitConfig configures per-client throttling of the RPC endpoint.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}
