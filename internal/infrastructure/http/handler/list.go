package handler

import (
	"net/http"

	"github.com/rezkam/todolist/internal/infrastructure/http/response"
)

// ListLists serves GET /lists.
func (h *TodoHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		response.FromDomainError(w, r, "list", err)
		return
	}

	page, err := h.todoService.ListLists(r.Context(), parseListFilter(r), req)
	if err != nil {
		response.FromDomainError(w, r, "list", err)
		return
	}
	response.OK(w, page)
}

// GetList serves GET /lists/{id}.
func (h *TodoHandler) GetList(w http.ResponseWriter, r *http.Request) {
	getResource(w, r, h.todoService.Lists)
}

// CreateList serves POST /lists.
func (h *TodoHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	createResource(w, r, h.todoService.Lists)
}

// UpdateList serves PUT /lists/{id}.
func (h *TodoHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	updateResource(w, r, h.todoService.Lists)
}

// DeleteList serves DELETE /lists/{id}. Items of the list go with it.
func (h *TodoHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	deleteResource(w, r, h.todoService.Lists)
}
