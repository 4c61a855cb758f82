package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"reachout_server/services"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the service error taxonomy onto HTTP statuses:
// validation 400, authorization 403, not-found 404, transient 503.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *services.ValidationError
		authz      *services.AuthorizationError
		notFound   *services.NotFoundError
		transient  *services.TransientError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &authz):
		status = http.StatusForbidden
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &transient):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
