package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/platform/logger"
	"github.com/phrazzld/devtracker-api/internal/store"
)

const taskColumns = `id, user_id, title, motivation, description, approach, acceptance_criteria,
	status, sort_order, is_deleted, due_date, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, ownerID, taskID, false)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, ownerID, taskID, true)
}

func (s *PostgresTaskStore) getByID(ctx context.Context, ownerID, taskID uuid.UUID, forUpdate bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		if errors.Is(err, domain.ErrCorruptedStatus) {
			log.Error("stored task has corrupted status",
				slog.String("task_id", taskID.String()),
				slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to get task",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return task, nil
}

// ListSummaries implements store.TaskStore.ListSummaries
func (s *PostgresTaskStore) ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// task_status is an enum declared in board order, so ORDER BY status
	// yields columns left to right.
	query := `SELECT id, title, status, sort_order, due_date, created_at
		FROM tasks
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY status, sort_order, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("user_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []domain.TaskSummary{}
	for rows.Next() {
		var (
			sum     domain.TaskSummary
			status  string
			dueDate sql.NullTime
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &status, &sum.SortOrder, &dueDate, &sum.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		if sum.Status, err = parseStoredStatus(status); err != nil {
			log.Error("stored task has corrupted status",
				slog.String("task_id", sum.ID.String()),
				slog.String("error", err.Error()))
			return nil, err
		}
		sum.DueDate = timePtr(dueDate)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(summaries)))
	return summaries, nil
}

// ListColumn implements store.TaskStore.ListColumn
func (s *PostgresTaskStore) ListColumn(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	excludeID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status = $2 AND is_deleted = FALSE AND id <> $3
		ORDER BY sort_order, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID, string(status), excludeID)
	if err != nil {
		log.Error("failed to list column",
			slog.String("user_id", ownerID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			if errors.Is(err, domain.ErrCorruptedStatus) {
				return nil, err
			}
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// LockColumn implements store.TaskStore.LockColumn.
// It takes a transaction-scoped advisory lock keyed by owner and status.
func (s *PostgresTaskStore) LockColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		columnLockKey(ownerID, status))
	if err != nil {
		log.Warn("failed to lock column",
			slog.String("user_id", ownerID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		nullString(task.Motivation),
		nullString(task.Description),
		nullString(task.Approach),
		nullString(task.AcceptanceCriteria),
		string(task.Status),
		task.SortOrder,
		task.Deleted,
		nullTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, task.UserID)
		}
		log.Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)),
		slog.Float64("sort_order", task.SortOrder))
	return nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	query := `UPDATE tasks
		SET title = $1, motivation = $2, description = $3, approach = $4,
			acceptance_criteria = $5, status = $6, sort_order = $7, due_date = $8,
			updated_at = $9
		WHERE id = $10 AND user_id = $11 AND is_deleted = FALSE`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullString(task.Motivation),
		nullString(task.Description),
		nullString(task.Approach),
		nullString(task.AcceptanceCriteria),
		string(task.Status),
		task.SortOrder,
		nullTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.Float64("sort_order", task.SortOrder))
	return nil
}

// UpdateSortOrders implements store.TaskStore.UpdateSortOrders
func (s *PostgresTaskStore) UpdateSortOrders(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	keys []store.SortKey,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(keys) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx,
		`UPDATE tasks SET sort_order = $1
		WHERE id = $2 AND user_id = $3 AND status = $4 AND is_deleted = FALSE`)
	if err != nil {
		log.Error("failed to prepare sort order update", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = stmt.Close() }()

	for _, k := range keys {
		result, err := stmt.ExecContext(ctx, k.SortOrder, k.TaskID, ownerID, string(status))
		if err != nil {
			log.Error("failed to update sort order",
				slog.String("task_id", k.TaskID.String()),
				slog.String("error", err.Error()))
			return MapError(err)
		}
		stale := fmt.Errorf("%w: task %s is no longer in %s", store.ErrConflict, k.TaskID, status)
		if err := CheckRowsAffected(result, stale); err != nil {
			log.Warn("column changed during rebalance",
				slog.String("task_id", k.TaskID.String()),
				slog.String("status", string(status)))
			return err
		}
	}

	log.Debug("sort orders rewritten",
		slog.String("user_id", ownerID.String()),
		slog.String("status", string(status)),
		slog.Int("count", len(keys)))
	return nil
}

// SoftDelete implements store.TaskStore.SoftDelete
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND is_deleted = FALSE`,
		at.UTC(), taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task to delete not found", slog.String("task_id", taskID.String()))
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                                    domain.Task
		motivation, description, approach, crit sql.NullString
		status                                  string
		dueDate                                 sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&motivation,
		&description,
		&approach,
		&crit,
		&status,
		&task.SortOrder,
		&task.Deleted,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if task.Status, err = parseStoredStatus(status); err != nil {
		return nil, err
	}
	task.Motivation = motivation.String
	task.Description = description.String
	task.Approach = approach.String
	task.AcceptanceCriteria = crit.String
	task.DueDate = timePtr(dueDate)

	return &task, nil
}

func parseStoredStatus(raw string) (domain.Status, error) {
	s := domain.Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrCorruptedStatus, raw)
	}
	return s, nil
}

func columnLockKey(ownerID uuid.UUID, status domain.Status) string {
	return ownerID.String() + ":" + string(status)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
