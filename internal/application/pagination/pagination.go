// Package pagination narrows a storage query with optional filters and cuts
// one page out of the ordered result.
package pagination

import (
	"fmt"
	"math"

	"github.com/rezkam/todolist/internal/domain"
)

// Default configuration values.
const (
	DefaultPageIndex = 1
	DefaultPageSize  = 10
	MaxPageSize      = 100
	MinPageSize      = 1
)

// Config holds the page size bounds.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// applyDefaults fills zero or inconsistent values.
func (c Config) applyDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = MaxPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}

// Request is the page a client asked for. Zero values mean "not provided".
type Request struct {
	PageIndex int
	PageSize  int
}

// Normalize resolves defaults and clamps the page size into
// [MinPageSize, cfg.MaxPageSize]. A negative page index is rejected.
func (r Request) Normalize(cfg Config) (Request, error) {
	cfg = cfg.applyDefaults()

	switch {
	case r.PageIndex == 0:
		r.PageIndex = DefaultPageIndex
	case r.PageIndex < 0:
		return Request{}, domain.NewValidationError("pageIndex", "must be greater than or equal to 1")
	}

	switch {
	case r.PageSize == 0:
		r.PageSize = cfg.DefaultPageSize
	case r.PageSize < MinPageSize:
		r.PageSize = MinPageSize
	case r.PageSize > cfg.MaxPageSize:
		r.PageSize = cfg.MaxPageSize
	}
	return r, nil
}

// Offset is the number of rows before this page. It saturates instead of
// overflowing for absurd page indexes.
func (r Request) Offset() int {
	if r.PageIndex <= 1 || r.PageSize <= 0 {
		return 0
	}
	if r.PageIndex-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return r.PageSize * (r.PageIndex - 1)
}

func (r Request) String() string {
	return fmt.Sprintf("page %d (size %d)", r.PageIndex, r.PageSize)
}

// Page is one slice of an ordered, filtered collection. TotalCount is the
// size of the whole filtered collection, not of Data.
type Page[T any] struct {
	PageIndex  int `json:"pageIndex"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	Data       []T `json:"data"`
}

// Map converts the page's data while keeping its counters.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		PageIndex:  p.PageIndex,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		Data:       make([]U, 0, len(p.Data)),
	}
	for _, v := range p.Data {
		out.Data = append(out.Data, fn(v))
	}
	return out
}
