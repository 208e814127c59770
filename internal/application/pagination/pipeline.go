package pagination

import (
	"context"
	"fmt"

	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage"
)

// Filter narrows a query using the recognized fields of P. Fields that are
// absent from P must leave the query untouched.
type Filter[E, P any] interface {
	Apply(q storage.Query[E], params P) storage.Query[E]
}

// FilterFunc adapts a function to Filter.
type FilterFunc[E, P any] func(q storage.Query[E], params P) storage.Query[E]

func (f FilterFunc[E, P]) Apply(q storage.Query[E], params P) storage.Query[E] {
	return f(q, params)
}

// WhereIf adds cond only when present is true.
func WhereIf[E any](q storage.Query[E], present bool, cond storage.Cond) storage.Query[E] {
	if !present {
		return q
	}
	return q.Where(cond)
}

// Run filters q, counts the result, orders it by title then id, and returns
// the requested page. req must already be normalized. A page past the end
// is returned empty with the real TotalCount.
func Run[E, P any](ctx context.Context, q storage.Query[E], filter Filter[E, P], params P, req Request) (Page[E], error) {
	if filter != nil {
		q = filter.Apply(q, params)
	}

	total, err := q.Count(ctx)
	if err != nil {
		return Page[E]{}, fmt.Errorf("failed to count %s: %w", req, err)
	}

	data := []E{}
	if offset := req.Offset(); offset < total {
		data, err = q.
			OrderBy(domain.FieldTitle, storage.Asc).
			OrderBy(domain.FieldID, storage.Asc).
			Skip(offset).
			Take(req.PageSize).
			List(ctx)
		if err != nil {
			return Page[E]{}, fmt.Errorf("failed to load %s: %w", req, err)
		}
	}

	return Page[E]{
		PageIndex:  req.PageIndex,
		PageSize:   req.PageSize,
		TotalCount: total,
		Data:       data,
	}, nil
}
