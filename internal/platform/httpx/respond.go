// Package httpx provides JSON response and decoding utilities.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the standard JSON error envelope. Code carries a machine
// readable identifier that clients branch on (e.g. CLIENT_HAS_BUDGETS).
type APIError struct {
	Code    string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an APIError payload with the given status code.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, APIError{Code: code, Message: message})
}

// ErrorWithDetails sends an APIError including structured details.
func ErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	JSON(w, status, APIError{Code: code, Message: message, Details: details})
}

// DecodeJSON decodes the request body into target, rejecting unknown
// payloads larger than 1 MiB.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(target)
}
