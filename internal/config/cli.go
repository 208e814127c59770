package config

import (
	"fmt"

	"github.com/rezkam/todolist/internal/env"
)

// CLIConfig holds configuration for the todoctl admin binary.
type CLIConfig struct {
	Database DatabaseConfig
}

// LoadCLIConfig loads and validates todoctl configuration from environment.
func LoadCLIConfig() (*CLIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	return cfg, nil
}
