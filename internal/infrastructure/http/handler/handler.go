package handler

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todolist/internal/application/todo"
	mw "github.com/rezkam/todolist/internal/infrastructure/http/middleware"
	"github.com/rezkam/todolist/internal/infrastructure/http/openapi"
)

// TodoHandler adapts HTTP requests to the list and item services.
type TodoHandler struct {
	todoService *todo.Service
}

// NewTodoHandler creates a new HTTP API handler.
func NewTodoHandler(todoService *todo.Service) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// NewAPIRouter returns the versioned API routes, each validated against doc
// before it reaches the handler. Paths are relative to openapi.BasePath.
// Both production code and tests use it so they see identical behavior.
func NewAPIRouter(todoService *todo.Service, doc *openapi3.T) http.Handler {
	h := NewTodoHandler(todoService)
	v := mw.NewRequestValidator(doc)
	r := chi.NewRouter()

	r.With(v.Operation(openapi.PathLists)).Get(openapi.PathLists, h.ListLists)
	r.With(v.Operation(openapi.PathLists)).Post(openapi.PathLists, h.CreateList)
	r.With(v.Operation(openapi.PathList)).Get(openapi.PathList, h.GetList)
	r.With(v.Operation(openapi.PathList)).Put(openapi.PathList, h.UpdateList)
	r.With(v.Operation(openapi.PathList)).Delete(openapi.PathList, h.DeleteList)
	r.With(v.Operation(openapi.PathListItems)).Get(openapi.PathListItems, h.ListItems)

	r.With(v.Operation(openapi.PathItems)).Post(openapi.PathItems, h.CreateItem)
	r.With(v.Operation(openapi.PathItem)).Get(openapi.PathItem, h.GetItem)
	r.With(v.Operation(openapi.PathItem)).Put(openapi.PathItem, h.UpdateItem)
	r.With(v.Operation(openapi.PathItem)).Delete(openapi.PathItem, h.DeleteItem)

	return r
}
