package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data and a Location header.
func Created(w http.ResponseWriter, location string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		encodeFailed(w, err)
		return
	}
	if location != "" {
		w.Header().Set("Location", location)
	}
	writeBody(w, http.StatusCreated, body)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSON marshals data before touching the response so that an encoding
// failure can still become a 500.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		encodeFailed(w, err)
		return
	}
	writeBody(w, statusCode, body)
}

func writeBody(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func encodeFailed(w http.ResponseWriter, err error) {
	slog.Error("failed to encode response", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(encodeFailedJSON))
}
