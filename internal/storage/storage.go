// Package storage defines the persistence port shared by every entity kind:
// a unit-of-work repository and a lazy, composable query.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by FindByID when no row has the given id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned by Save when a staged update or removal
	// matched no row, meaning the row changed or vanished since it was read.
	ErrConflict = errors.New("record changed or removed since it was read")

	// ErrConstraint is returned when the store rejects a change because of an
	// integrity constraint such as a foreign key.
	ErrConstraint = errors.New("constraint violation")

	// ErrUnknownField is returned when a query names a field the entity does not have.
	ErrUnknownField = errors.New("unknown field")
)

// Repository is the unit of work for one entity kind.
//
// Add, Update and Remove only stage changes. Save applies every staged change
// in a single transaction: either all of them become visible or none do.
// A Repository belongs to one request and must not be shared between goroutines.
type Repository[E any] interface {
	// FindByID returns ErrNotFound when the id does not exist.
	FindByID(ctx context.Context, id int64) (E, error)

	// Query starts a new query over the whole collection. Nothing runs until
	// Count, List or Any is called.
	Query() Query[E]

	Add(entity *E)
	Update(entity *E)
	Remove(entity *E)

	// Save commits staged changes. Ids of added entities are written back
	// into the staged values once the transaction commits.
	Save(ctx context.Context) error
}

// Query is an immutable query builder. Every method returns a new Query and
// leaves the receiver unchanged, so partial queries can be reused.
type Query[E any] interface {
	Where(cond Cond) Query[E]
	OrderBy(field string, dir Direction) Query[E]
	Skip(n int) Query[E]
	Take(n int) Query[E]

	// Count returns the number of rows matching the conditions. Ordering and
	// the Skip/Take window do not affect it.
	Count(ctx context.Context) (int, error)

	// List materializes the rows inside the window.
	List(ctx context.Context) ([]E, error)

	// Any reports whether at least one row matches the conditions.
	Any(ctx context.Context) (bool, error)
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}
