package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/api/problem"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/domain/events"
	"github.com/meridian-cal/server/internal/domain/users"
	"github.com/meridian-cal/server/internal/metrics"
	"github.com/meridian-cal/server/internal/validation"
)

// Problem type URIs for the error taxonomy.
const (
	typeValidation  = "https://meridian-cal.dev/problems/validation-error"
	typeNotFound    = "https://meridian-cal.dev/problems/not-found"
	typeForbidden   = "https://meridian-cal.dev/problems/forbidden"
	typeConflict    = "https://meridian-cal.dev/problems/conflict"
	typeServerError = "https://meridian-cal.dev/problems/server-error"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, typeValidation, "Invalid request body", err, env)
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, env string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", err, env)
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps domain errors onto the HTTP error taxonomy:
// 404 missing entity, 403 ownership, 409 uniqueness conflict, 422
// payload or time-range validation, 500 otherwise.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var schemaErr *validation.Error
	var timeErr *events.ValidationError

	switch {
	case errors.Is(err, users.ErrNotFound),
		errors.Is(err, calendars.ErrNotFound),
		errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", err, env)
	case errors.Is(err, calendars.ErrForbidden),
		errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", err, env)
	case errors.Is(err, users.ErrUsernameTaken):
		problem.Write(w, r, http.StatusConflict, typeConflict, "Username already exists", err, env)
	case errors.As(err, &schemaErr):
		fields := make(map[string]interface{}, len(schemaErr.Fields))
		for field, reason := range schemaErr.Fields {
			fields[field] = reason
		}
		problem.Write(w, r, http.StatusUnprocessableEntity, typeValidation, "Validation failed", err, env,
			problem.WithErrors(fields))
	case errors.As(err, &timeErr):
		metrics.ValidationRejectionsTotal.WithLabelValues(timeErr.Reason).Inc()
		problem.Write(w, r, http.StatusUnprocessableEntity, typeValidation, "Validation failed", err, env,
			problem.WithDetail(timeErr.Message),
			problem.WithErrors(map[string]interface{}{"reason": timeErr.Reason}))
	default:
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, env)
	}
}
