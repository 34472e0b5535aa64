package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/api/shared"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/service"
)

// getPathUUID extracts a UUID path parameter. A missing or malformed id
// cannot name an existing task, so it is reported as ErrTaskNotFound.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a task id", service.ErrTaskNotFound, paramName, raw)
	}
	return id, nil
}

// requireOwner returns the owner id set by the auth middleware, writing a
// 401 response when it is absent.
func requireOwner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	ownerID, ok := shared.OwnerIDFromContext(r.Context())
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return ownerID, true
}

// requireOwnerAndTaskID combines requireOwner with parsing the {id} path
// parameter. It writes the error response when either fails.
func requireOwnerAndTaskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid task id", slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, taskID, true
}

// decodeAndValidate decodes the body into req and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}
