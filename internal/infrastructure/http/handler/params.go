package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/application/todo"
	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/ptr"
)

// pathID reads an integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return id, nil
}

// queryInt returns 0 when the parameter is absent, which pagination treats as
// "use the default".
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func parsePageRequest(r *http.Request) (pagination.Request, error) {
	index, err := queryInt(r, "pageIndex")
	if err != nil {
		return pagination.Request{}, err
	}
	size, err := queryInt(r, "pageSize")
	if err != nil {
		return pagination.Request{}, err
	}
	return pagination.Request{PageIndex: index, PageSize: size}, nil
}

func parseListFilter(r *http.Request) todo.ListFilter {
	return todo.ListFilter{Title: r.URL.Query().Get("title")}
}

func parseItemFilter(r *http.Request) (todo.ItemFilter, error) {
	q := r.URL.Query()
	f := todo.ItemFilter{Title: q.Get("title")}

	if raw := strings.TrimSpace(q.Get("isComplete")); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return todo.ItemFilter{}, domain.NewValidationError("isComplete", "must be true or false")
		}
		f.IsComplete = ptr.To(done)
	}

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return todo.ItemFilter{}, domain.NewValidationError("date", "must be a date in YYYY-MM-DD form")
		}
		f.Date = ptr.To(d)
	}

	return f, nil
}
