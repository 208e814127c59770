package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rezkam/todolist/internal/application/crud"
	"github.com/rezkam/todolist/internal/infrastructure/http/response"
)

// The functions below serve one resource operation for any entity kind, so
// list and item endpoints share status codes and error mapping.

func getResource[E crud.Entity, D crud.Shape, P any](w http.ResponseWriter, r *http.Request, h *crud.Handler[E, D, P]) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}

	shape, err := h.Get(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}
	response.OK(w, shape)
}

func createResource[E crud.Entity, D crud.Shape, P any](w http.ResponseWriter, r *http.Request, h *crud.Handler[E, D, P]) {
	var in D
	if err := decodeBody(r, &in); err != nil {
		slog.WarnContext(r.Context(), "invalid request body", "resource", h.Resource(), "error", err)
		response.BadRequest(w, "invalid JSON body")
		return
	}

	created, err := h.Create(r.Context(), in)
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}

	location := strings.TrimSuffix(r.URL.Path, "/") + "/" + strconv.FormatInt(created.ShapeID(), 10)
	response.Created(w, location, created)
}

func updateResource[E crud.Entity, D crud.Shape, P any](w http.ResponseWriter, r *http.Request, h *crud.Handler[E, D, P]) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}

	var in D
	if err := decodeBody(r, &in); err != nil {
		slog.WarnContext(r.Context(), "invalid request body", "resource", h.Resource(), "id", id, "error", err)
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if err := h.Update(r.Context(), id, in); err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}
	response.NoContent(w)
}

func deleteResource[E crud.Entity, D crud.Shape, P any](w http.ResponseWriter, r *http.Request, h *crud.Handler[E, D, P]) {
	id, err := pathID(r, "id")
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}

	removed, err := h.Delete(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, h.Resource(), err)
		return
	}
	response.OK(w, removed)
}

var errEmptyBody = errors.New("request body is empty")

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}
