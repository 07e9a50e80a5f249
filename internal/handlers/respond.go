package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"agenda-service/internal/intake"
)

type errorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeIntakeError maps the intake error taxonomy onto HTTP statuses.
// Anything unrecognized is an unexpected error and reads as a plain 500.
func writeIntakeError(w http.ResponseWriter, err error) {
	var validationErr *intake.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   validationErr.Error(),
			Details: map[string]any{"fields": validationErr.Fields},
		})
		return
	}

	var notFoundErr *intake.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var persistenceErr *intake.PersistenceError
	if errors.As(err, &persistenceErr) {
		// The cause is logged by the intake core; don't leak it to callers.
		writeError(w, http.StatusInternalServerError, persistenceErr.Op+" failed")
		return
	}

	writeError(w, http.StatusInternalServerError, "internal error")
}
