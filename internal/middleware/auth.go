package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequireAPIKey validates the static API key on every request before
// passing it on. The header name is configurable; the comparison is
// constant-time. Missing or mismatched keys get a fixed 401 body.
func RequireAPIKey(header, key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(header)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid or missing API key"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
