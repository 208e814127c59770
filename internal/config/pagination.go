package config

import "fmt"

// PaginationConfig holds pagination configuration.
type PaginationConfig struct {
	DefaultPageSize int `env:"TODOLIST_DEFAULT_PAGE_SIZE" default:"10"`
	MaxPageSize     int `env:"TODOLIST_MAX_PAGE_SIZE" default:"100"`
}

// Validate validates pagination configuration.
func (c *PaginationConfig) Validate() error {
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("TODOLIST_DEFAULT_PAGE_SIZE (%d) must be >= 1", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("TODOLIST_MAX_PAGE_SIZE (%d) must be >= TODOLIST_DEFAULT_PAGE_SIZE (%d)", c.MaxPageSize, c.DefaultPageSize)
	}
	return nil
}
