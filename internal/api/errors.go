package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/devtracker-api/internal/api/shared"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/service"
)

// MapErrorToStatusCode maps service error kinds to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Persistence
// and internal details never appear in it.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch service.KindOf(err) {
	case service.KindNotFound:
		return "Task not found"
	case service.KindValidation:
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
		}
		switch {
		case errors.Is(err, domain.ErrEmptyTaskTitle):
			return "Title is required"
		case errors.Is(err, domain.ErrTaskTitleLength):
			return "Title is too long"
		case errors.Is(err, domain.ErrInvalidStatus):
			return "Invalid status"
		}
		return "Invalid task data"
	case service.KindConflict:
		return "The task was changed by another request; retry or use reorder"
	case service.KindUnauthorized:
		return "Unauthorized"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns request validation failures into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "must not be negative"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for a service error. defaultMessage
// replaces the generic text of internal errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMessage != "" {
		message = defaultMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a request that failed
// decoding or struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
