package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/store"
)

// Common service errors. Callers match them with errors.Is; the API layer
// maps them to status codes via KindOf.
var (
	// ErrTaskNotFound indicates the task does not exist, is owned by someone
	// else, or has been soft-deleted. The three cases are indistinguishable
	// to the caller.
	ErrTaskNotFound = errors.New("task not found")

	// ErrConflict indicates the write could not be completed because of
	// concurrent modification, after any automatic retries were exhausted.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrInternal indicates an unexpected failure, including corrupt stored
	// data. Details are kept in the wrapped chain for logging only.
	ErrInternal = errors.New("internal error")
)

// ErrorKind is the caller-facing class of a service error.
type ErrorKind int

// Error kinds, from most to least specific.
const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInternal):
		return KindInternal
	case errors.Is(err, domain.ErrValidation):
		return KindValidation
	case errors.Is(err, ErrTaskNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// classify maps store and domain errors onto exactly one service error class.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrInternal):
		return err
	case store.IsNotFoundError(err), errors.Is(err, domain.ErrTaskDeleted):
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	case errors.Is(err, domain.ErrCorruptedStatus):
		return fmt.Errorf("%w: %w", ErrInternal, err)
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case store.IsConflictError(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
