package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
)

// SortKey pairs a task with a new sort key. It is used when a column is
// renumbered.
type SortKey struct {
	TaskID    uuid.UUID
	SortOrder float64
}

// TaskStore defines the interface for task data persistence.
//
// Every method is scoped to an owner. Soft-deleted tasks behave as if they
// do not exist: reads skip them and writes report ErrTaskNotFound.
type TaskStore interface {
	// GetByID retrieves a live task by ID for ownerID.
	// Returns ErrTaskNotFound if no such task exists.
	// Returns domain.ErrCorruptedStatus if the stored status is unknown.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID with a row lock held until the enclosing
	// transaction ends. It must be called on a transactional store.
	GetByIDForUpdate(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// ListSummaries returns summaries of all live tasks for ownerID,
	// grouped by status in board order and ascending by sort key.
	ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error)

	// ListColumn returns the live tasks of one status column, ascending by
	// sort key. excludeID is left out of the result; pass uuid.Nil to
	// include every task.
	ListColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status, excludeID uuid.UUID) ([]*domain.Task, error)

	// LockColumn serializes writers of one (owner, status) column until the
	// enclosing transaction ends. It must be called on a transactional store.
	LockColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status) error

	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// Update writes every mutable field of a live task, including status and sort key.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateSortOrders rewrites the sort keys of several live tasks of ownerID
	// that must all still be in column status.
	// Returns ErrConflict if any of them was deleted or left the column, so
	// the caller can rerun its read-compute-write cycle.
	UpdateSortOrders(ctx context.Context, ownerID uuid.UUID, status domain.Status, keys []SortKey) error

	// SoftDelete marks a live task as deleted.
	// Returns ErrTaskNotFound if the task does not exist or is already deleted.
	SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, at time.Time) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
