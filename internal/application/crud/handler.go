// Package crud implements list, get, create, update and delete once for any
// entity kind, on top of the storage port and the pagination pipeline.
package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
)

// Entity is a stored record with a store-assigned id.
type Entity interface {
	EntityID() int64
}

// Shape is the public representation of an entity.
type Shape interface {
	ShapeID() int64
}

// Mapper converts between an entity and its public shape.
type Mapper[E, D any] interface {
	ToShape(entity E) D
	// ToEntity builds the entity for id from the shape; the shape's own id is ignored.
	ToEntity(id int64, shape D) E
}

// Validator checks a shape before it is written.
type Validator[D any] interface {
	Validate(ctx context.Context, shape D) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[D any] func(ctx context.Context, shape D) error

func (f ValidatorFunc[D]) Validate(ctx context.Context, shape D) error {
	return f(ctx, shape)
}

// Scope restricts List to part of the collection, such as the items of one list.
type Scope struct {
	Conds []storage.Cond
	// RequireNonEmpty turns an empty scoped collection into ErrNotFound.
	RequireNonEmpty bool
}

// Options configures a Handler.
type Options[E, D, P any] struct {
	// Resource names the entity kind in errors and logs.
	Resource string

	// Repository returns a fresh unit of work for every call.
	Repository func() storage.Repository[E]

	Filter     pagination.Filter[E, P]
	Mapper     Mapper[E, D]
	Validator  Validator[D]
	Pagination pagination.Config
}

// Handler runs the five resource operations for one entity kind.
// It holds no per-request state and is safe for concurrent use.
type Handler[E Entity, D Shape, P any] struct {
	resource   string
	repository func() storage.Repository[E]
	filter     pagination.Filter[E, P]
	mapper     Mapper[E, D]
	validator  Validator[D]
	pagination pagination.Config
}

// New returns a Handler. Repository and Mapper are required.
func New[E Entity, D Shape, P any](opts Options[E, D, P]) *Handler[E, D, P] {
	if opts.Repository == nil || opts.Mapper == nil {
		panic("crud: Repository and Mapper are required")
	}
	if opts.Resource == "" {
		opts.Resource = "resource"
	}
	return &Handler[E, D, P]{
		resource:   opts.Resource,
		repository: opts.Repository,
		filter:     opts.Filter,
		mapper:     opts.Mapper,
		validator:  opts.Validator,
		pagination: opts.Pagination,
	}
}

// Resource returns the configured resource name.
func (h *Handler[E, D, P]) Resource() string {
	return h.resource
}

// List returns one page of the scoped, filtered collection ordered by title.
func (h *Handler[E, D, P]) List(ctx context.Context, scope Scope, params P, req pagination.Request) (pagination.Page[D], error) {
	req, err := req.Normalize(h.pagination)
	if err != nil {
		return pagination.Page[D]{}, err
	}

	q := h.repository().Query()
	for _, c := range scope.Conds {
		q = q.Where(c)
	}

	if scope.RequireNonEmpty {
		found, err := q.Any(ctx)
		if err != nil {
			return pagination.Page[D]{}, fmt.Errorf("failed to probe %s scope: %w", h.resource, err)
		}
		if !found {
			slog.InfoContext(ctx, "scoped collection is empty", "resource", h.resource, "scope", scopeAttr(scope))
			return pagination.Page[D]{}, fmt.Errorf("%w: no %s in scope %s", domain.ErrNotFound, h.resource, scopeAttr(scope))
		}
	}

	page, err := pagination.Run(ctx, q, h.filter, params, req)
	if err != nil {
		return pagination.Page[D]{}, fmt.Errorf("failed to list %s: %w", h.resource, err)
	}
	return pagination.Map(page, h.mapper.ToShape), nil
}

// Get returns the entity with the given id.
func (h *Handler[E, D, P]) Get(ctx context.Context, id int64) (D, error) {
	var zero D
	entity, err := h.repository().FindByID(ctx, id)
	if err != nil {
		return zero, h.lookupError(ctx, id, err)
	}
	return h.mapper.ToShape(entity), nil
}

// Create validates and stores a new entity and returns it with its new id.
// Any id carried by the shape is ignored.
func (h *Handler[E, D, P]) Create(ctx context.Context, shape D) (D, error) {
	var zero D
	if err := h.validate(ctx, shape); err != nil {
		return zero, err
	}

	entity := h.mapper.ToEntity(0, shape)
	repo := h.repository()
	repo.Add(&entity)
	if err := repo.Save(ctx); err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", h.resource, err)
	}

	slog.InfoContext(ctx, "created", "resource", h.resource, "id", entity.EntityID())
	return h.mapper.ToShape(entity), nil
}

// Update replaces the entity with the given id. The shape must carry the same id.
func (h *Handler[E, D, P]) Update(ctx context.Context, id int64, shape D) error {
	if shape.ShapeID() != id {
		slog.WarnContext(ctx, "id mismatch on update", "resource", h.resource, "path_id", id, "body_id", shape.ShapeID())
		return fmt.Errorf("%w: %s path id %d, body id %d", domain.ErrIDMismatch, h.resource, id, shape.ShapeID())
	}
	if err := h.validate(ctx, shape); err != nil {
		return err
	}

	entity := h.mapper.ToEntity(id, shape)
	repo := h.repository()
	repo.Update(&entity)

	err := repo.Save(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("failed to update %s %d: %w", h.resource, id, err)
	}

	// The write matched nothing. If the row is gone this is a plain not found;
	// if it is still there something else changed it and we cannot recover.
	exists, existsErr := h.repository().Query().Where(storage.Eq(domain.FieldID, id)).Any(ctx)
	if existsErr != nil {
		return fmt.Errorf("failed to recheck %s %d after conflict: %w", h.resource, id, existsErr)
	}
	if !exists {
		slog.InfoContext(ctx, "update target not found", "resource", h.resource, "id", id)
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, h.resource, id)
	}

	slog.ErrorContext(ctx, "concurrent modification on update", "resource", h.resource, "id", id, "error", err)
	return fmt.Errorf("%w: %s %d: %w", domain.ErrConcurrencyConflict, h.resource, id, err)
}

// Delete removes the entity with the given id and returns what was removed.
func (h *Handler[E, D, P]) Delete(ctx context.Context, id int64) (D, error) {
	var zero D
	repo := h.repository()

	entity, err := repo.FindByID(ctx, id)
	if err != nil {
		return zero, h.lookupError(ctx, id, err)
	}

	repo.Remove(&entity)
	if err := repo.Save(ctx); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Removed by someone else between the read and the write.
			return zero, fmt.Errorf("%w: %s %d", domain.ErrNotFound, h.resource, id)
		}
		return zero, fmt.Errorf("failed to delete %s %d: %w", h.resource, id, err)
	}

	slog.InfoContext(ctx, "deleted", "resource", h.resource, "id", id)
	return h.mapper.ToShape(entity), nil
}

func (h *Handler[E, D, P]) validate(ctx context.Context, shape D) error {
	if h.validator == nil {
		return nil
	}
	return h.validator.Validate(ctx, shape)
}

func (h *Handler[E, D, P]) lookupError(ctx context.Context, id int64, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		slog.InfoContext(ctx, "not found", "resource", h.resource, "id", id)
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, h.resource, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", h.resource, id, err)
}

func scopeAttr(s Scope) string {
	return fmt.Sprint(s.Conds)
}
