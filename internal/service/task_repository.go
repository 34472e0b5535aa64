package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/store"
)

// TaskRepository defines the persistence operations TaskService needs.
// Semantics match store.TaskStore.
type TaskRepository interface {
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	GetByIDForUpdate(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error)
	ListColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status, excludeID uuid.UUID) ([]*domain.Task, error)
	LockColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status) error
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	UpdateSortOrders(ctx context.Context, ownerID uuid.UUID, status domain.Status, keys []store.SortKey) error
	SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, at time.Time) error

	// RunInTx runs fn against a repository bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise;
	// fn's error is returned unchanged. Calling RunInTx on a repository
	// that is already transactional runs fn in the same transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo TaskRepository) error) error
}

// NewTaskRepositoryAdapter creates a new adapter that allows a store.TaskStore
// to be used where a TaskRepository is expected.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: taskStore,
		db:        db,
	}
}

// taskRepositoryAdapter adapts a store.TaskStore to the TaskRepository interface
type taskRepositoryAdapter struct {
	taskStore store.TaskStore
	db        *sql.DB
	inTx      bool
}

// GetByID implements TaskRepository.GetByID
func (a *taskRepositoryAdapter) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return a.taskStore.GetByID(ctx, ownerID, taskID)
}

// GetByIDForUpdate implements TaskRepository.GetByIDForUpdate
func (a *taskRepositoryAdapter) GetByIDForUpdate(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return a.taskStore.GetByIDForUpdate(ctx, ownerID, taskID)
}

// ListSummaries implements TaskRepository.ListSummaries
func (a *taskRepositoryAdapter) ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error) {
	return a.taskStore.ListSummaries(ctx, ownerID)
}

// ListColumn implements TaskRepository.ListColumn
func (a *taskRepositoryAdapter) ListColumn(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	excludeID uuid.UUID,
) ([]*domain.Task, error) {
	return a.taskStore.ListColumn(ctx, ownerID, status, excludeID)
}

// LockColumn implements TaskRepository.LockColumn
func (a *taskRepositoryAdapter) LockColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status) error {
	return a.taskStore.LockColumn(ctx, ownerID, status)
}

// Create implements TaskRepository.Create
func (a *taskRepositoryAdapter) Create(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Create(ctx, task)
}

// Update implements TaskRepository.Update
func (a *taskRepositoryAdapter) Update(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Update(ctx, task)
}

// UpdateSortOrders implements TaskRepository.UpdateSortOrders
func (a *taskRepositoryAdapter) UpdateSortOrders(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	keys []store.SortKey,
) error {
	return a.taskStore.UpdateSortOrders(ctx, ownerID, status, keys)
}

// SoftDelete implements TaskRepository.SoftDelete
func (a *taskRepositoryAdapter) SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, at time.Time) error {
	return a.taskStore.SoftDelete(ctx, ownerID, taskID, at)
}

// RunInTx implements TaskRepository.RunInTx
func (a *taskRepositoryAdapter) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context, repo TaskRepository) error,
) error {
	if a.inTx {
		return fn(ctx, a)
	}
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &taskRepositoryAdapter{
			taskStore: a.taskStore.WithTx(tx),
			db:        a.db,
			inTx:      true,
		})
	})
}
