package todo

import (
	"strings"

	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/ptr"
	"github.com/rezkam/todolist/internal/storage"
)

// ListFilter holds the optional list filters. A blank Title is not applied.
type ListFilter struct {
	Title string
}

// ItemFilter holds the optional item filters. Nil pointers and a blank
// Title are not applied.
type ItemFilter struct {
	Title      string
	IsComplete *bool
	Date       *domain.Date
}

// FilterLists narrows lists by trimmed title substring.
func FilterLists(q storage.Query[domain.List], f ListFilter) storage.Query[domain.List] {
	return pagination.WhereIf(q, strings.TrimSpace(f.Title) != "", storage.Contains(domain.FieldTitle, f.Title))
}

// FilterItems narrows items by trimmed title substring, completion flag and due day.
func FilterItems(q storage.Query[domain.Item], f ItemFilter) storage.Query[domain.Item] {
	q = pagination.WhereIf(q, strings.TrimSpace(f.Title) != "", storage.Contains(domain.FieldTitle, f.Title))
	q = pagination.WhereIf(q, f.IsComplete != nil, storage.Eq(domain.FieldDone, ptr.Deref(f.IsComplete, false)))
	q = pagination.WhereIf(q, f.Date != nil, storage.DateEq(domain.FieldDueDate, ptr.Deref(f.Date, domain.Date{})))
	return q
}
