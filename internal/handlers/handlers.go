package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/omega-realm/admin-api/internal/repository"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse represents a plain success response
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, details string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: details})
}

// writeRepositoryError maps repository errors to HTTP statuses.
// Database failures become a fixed 500 body; raw error text stays in
// the server log only.
func writeRepositoryError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch err {
	case repository.ErrNotFound:
		writeError(w, http.StatusNotFound, notFoundMessage)
	case repository.ErrConflict:
		writeError(w, http.StatusConflict, "Record already exists")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
