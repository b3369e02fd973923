package api

import (
	"encoding/json"
	"net/http"
)

// Machine-oriented error codes surfaced to clients.
const (
	CodeValidationFailed  = "validation_failed"
	CodeUnauthenticated   = "unauthenticated"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeIllegalTransition = "illegal_transition"
	CodeConflict          = "conflict"
	CodeInternal          = "internal"
)

// ErrorResponse is the JSON body for every failure.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, ErrorResponse{Error: code, Message: message, Details: details}, status)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
