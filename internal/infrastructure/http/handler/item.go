package handler

import (
	"net/http"

	"github.com/rezkam/todolist/internal/infrastructure/http/response"
)

// ListItems serves GET /lists/{listId}/items.
func (h *TodoHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listId")
	if err != nil {
		response.FromDomainError(w, r, "item", err)
		return
	}
	req, err := parsePageRequest(r)
	if err != nil {
		response.FromDomainError(w, r, "item", err)
		return
	}
	filter, err := parseItemFilter(r)
	if err != nil {
		response.FromDomainError(w, r, "item", err)
		return
	}

	page, err := h.todoService.ListItems(r.Context(), listID, filter, req)
	if err != nil {
		response.FromDomainError(w, r, "item", err)
		return
	}
	response.OK(w, page)
}

// GetItem serves GET /items/{id}.
func (h *TodoHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	getResource(w, r, h.todoService.Items)
}

// CreateItem serves POST /items.
func (h *TodoHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	createResource(w, r, h.todoService.Items)
}

// UpdateItem serves PUT /items/{id}.
func (h *TodoHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	updateResource(w, r, h.todoService.Items)
}

// DeleteItem serves DELETE /items/{id}.
func (h *TodoHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	deleteResource(w, r, h.todoService.Items)
}
