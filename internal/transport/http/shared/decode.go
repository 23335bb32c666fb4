package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "stafflink/pkg/domain-errors"
)

// Decode reads a JSON body into T. On failure it writes the 400 envelope and
// returns false; the handler just returns.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	return payload, true
}

// UUIDParam parses a chi URL parameter as a UUID. On failure it writes the
// 400 envelope and returns false.
func UUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
