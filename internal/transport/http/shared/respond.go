// Package shared holds the JSON response conventions used by every handler.
//
// All endpoints answer with a {"success": bool, "message"?, ...} envelope.
// Domain error codes map onto conventional HTTP statuses here so handlers
// never pick status codes by hand.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "stafflink/pkg/domain-errors"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a success envelope with the given payload.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Message: message})
}

// WriteError maps a domain error onto a status code and failure envelope.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusOf(err))
	_ = json.NewEncoder(w).Encode(Envelope{Success: false, Message: dErrors.MessageOf(err)})
}

// StatusOf resolves the HTTP status for a domain error code. Duplicate email
// registration is a conflict but reported as 400 to keep the public contract
// stable.
func StatusOf(err error) int {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation, dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
