package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/todolist/internal/domain"
)

// encodeFailedJSON is written when an error body itself cannot be marshaled.
const encodeFailedJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"` // always an array, never null
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, fields ...ErrorField) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: fields,
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// TooManyRequests sends a 429 error.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, "RATE_LIMITED", "too many requests", http.StatusTooManyRequests)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client only gets a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	write(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func write(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	if resp.Error.Details == nil {
		resp.Error.Details = []ErrorField{}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailedJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// FromDomainError maps domain errors to HTTP responses. Anything it does not
// recognize is a 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	var ve *domain.ValidationError

	switch {
	// Validation errors (400)
	case errors.As(err, &ve):
		fields := make([]ErrorField, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			fields = append(fields, ErrorField{Field: f.Field, Issue: f.Issue})
		}
		ValidationError(w, fields...)
	case errors.Is(err, domain.ErrIDMismatch):
		ValidationError(w, ErrorField{Field: "id", Issue: "must match the id in the path"})
	case errors.Is(err, domain.ErrInvalidInput):
		BadRequest(w, "invalid input")

	// Not found errors (404)
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, resource)

	// Unknown errors, concurrency conflicts and storage failures (500)
	default:
		InternalError(w, r, err)
	}
}
