package config

import (
	"fmt"
	"time"

	"github.com/rezkam/todolist/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Pagination      PaginationConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TODOLIST_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
// Zero values fall back to the server's own defaults.
type HTTPConfig struct {
	Host              string        `env:"TODOLIST_HTTP_HOST"`
	Port              string        `env:"TODOLIST_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"TODOLIST_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"TODOLIST_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"TODOLIST_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"TODOLIST_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"TODOLIST_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"TODOLIST_HTTP_MAX_BODY_BYTES"`

	// RateLimitRPS of zero disables rate limiting.
	RateLimitRPS   float64 `env:"TODOLIST_HTTP_RATE_LIMIT_RPS"`
	RateLimitBurst int     `env:"TODOLIST_HTTP_RATE_LIMIT_BURST"`
}

// Validate validates HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("TODOLIST_HTTP_RATE_LIMIT_RPS (%g) must not be negative", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("TODOLIST_HTTP_RATE_LIMIT_BURST (%d) must not be negative", c.RateLimitBurst)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
// A .env file in the working directory is read first when present.
func LoadServerConfig() (*ServerConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
