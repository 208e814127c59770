// Package todo wires the generic CRUD handler to lists and items.
package todo

import (
	"context"

	"github.com/rezkam/todolist/internal/application/crud"
	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
)

// Repositories hands out a fresh unit of work per call for each entity kind.
type Repositories struct {
	Lists func() storage.Repository[domain.List]
	Items func() storage.Repository[domain.Item]
}

// Config holds configuration for the Service.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

type (
	// ListHandler serves list resources.
	ListHandler = crud.Handler[domain.List, ListDTO, ListFilter]
	// ItemHandler serves item resources.
	ItemHandler = crud.Handler[domain.Item, ItemDTO, ItemFilter]
)

// Service exposes list and item operations.
type Service struct {
	Lists *ListHandler
	Items *ItemHandler
}

// NewService builds both handlers over the given repositories.
func NewService(repos Repositories, cfg Config) *Service {
	page := pagination.Config{DefaultPageSize: cfg.DefaultPageSize, MaxPageSize: cfg.MaxPageSize}
	v := newValidate()

	return &Service{
		Lists: crud.New(crud.Options[domain.List, ListDTO, ListFilter]{
			Resource:   "list",
			Repository: repos.Lists,
			Filter:     pagination.FilterFunc[domain.List, ListFilter](FilterLists),
			Mapper:     ListMapper{},
			Validator:  listValidator{v: v},
			Pagination: page,
		}),
		Items: crud.New(crud.Options[domain.Item, ItemDTO, ItemFilter]{
			Resource:   "item",
			Repository: repos.Items,
			Filter:     pagination.FilterFunc[domain.Item, ItemFilter](FilterItems),
			Mapper:     ItemMapper{},
			Validator:  itemValidator{v: v, lists: repos.Lists},
			Pagination: page,
		}),
	}
}

// ListLists returns a page of all lists.
func (s *Service) ListLists(ctx context.Context, f ListFilter, req pagination.Request) (pagination.Page[ListDTO], error) {
	return s.Lists.List(ctx, crud.Scope{}, f, req)
}

// ListItems returns a page of the items of one list. A list with no items,
// or no list at all, is reported as domain.ErrNotFound.
func (s *Service) ListItems(ctx context.Context, listID int64, f ItemFilter, req pagination.Request) (pagination.Page[ItemDTO], error) {
	scope := crud.Scope{
		Conds:           []storage.Cond{storage.Eq(domain.FieldListID, listID)},
		RequireNonEmpty: true,
	}
	return s.Items.List(ctx, scope, f, req)
}
