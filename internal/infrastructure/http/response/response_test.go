package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/infrastructure/http/response"
)

// unencodableType fails during JSON encoding.
type unencodableType struct {
	BadField chan int `json:"bad_field"`
}

func (u unencodableType) MarshalJSON() ([]byte, error) {
	_, err := json.Marshal(u.BadField)
	return nil, err
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

// An encoding failure must never leave a success status behind.
func TestOK_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.OK(w, unencodableType{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "failed to encode response", resp.Error.Message)
}

func TestCreated_EncodingFailure_Returns500WithoutLocation(t *testing.T) {
	w := httptest.NewRecorder()
	response.Created(w, "/api/v1/lists/1", unencodableType{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
}

func TestOK_Success_ReturnsValidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.OK(w, map[string]any{"id": 123, "items": []string{"a", "b"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":123,"items":["a","b"]}`, w.Body.String())
}

func TestCreated_SetsLocation(t *testing.T) {
	w := httptest.NewRecorder()
	response.Created(w, "/api/v1/items/7", map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/items/7", w.Header().Get("Location"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError_DetailsAreNeverNull(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, "INVALID_INPUT", "missing required field", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INVALID_INPUT","message":"missing required field","details":[]}}`, w.Body.String())
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "validation error carries fields",
			err:        fmt.Errorf("create: %w", domain.NewValidationError("title", "is required")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "title",
		},
		{
			name:       "id mismatch",
			err:        fmt.Errorf("%w: path 1 body 2", domain.ErrIDMismatch),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "id",
		},
		{
			name:       "bare invalid input",
			err:        domain.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: item 5", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "concurrency conflict is a server error",
			err:        domain.ErrConcurrencyConflict,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			response.FromDomainError(w, r, "item", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantField != "" {
				require.NotEmpty(t, resp.Error.Details)
				assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
			}
		})
	}
}

func TestFromDomainError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	response.FromDomainError(w, r, "list", errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, "an internal error occurred", decodeError(t, w).Error.Message)
}

func TestNotFound_NamesResource(t *testing.T) {
	w := httptest.NewRecorder()
	response.NotFound(w, "list")
	assert.Equal(t, "list not found", decodeError(t, w).Error.Message)
}
