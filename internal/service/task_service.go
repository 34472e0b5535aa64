package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/domain/ordering"
	"github.com/phrazzld/devtracker-api/internal/events"
	"github.com/phrazzld/devtracker-api/internal/platform/logger"
	"github.com/phrazzld/devtracker-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxAttempts is how many times a conflicting write is attempted
// before ErrConflict is returned.
const DefaultMaxAttempts = 3

const tracerName = "github.com/phrazzld/devtracker-api/internal/service"

// TaskService provides the task board operations. Every method is scoped to
// ownerID.
type TaskService interface {
	// ListTasks returns summaries of the owner's live tasks, grouped by
	// status in board order and ascending by sort key within each status.
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error)

	// GetBoard returns every status column, including empty ones.
	GetBoard(ctx context.Context, ownerID uuid.UUID) (*domain.Board, error)

	// GetTask returns one live task.
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// CreateTask adds a task at the end of its status column.
	CreateTask(ctx context.Context, ownerID uuid.UUID, fields domain.TaskFields) (*domain.Task, error)

	// UpdateTask applies a partial update. A status change keeps the task's
	// sort key; use ReorderTask to position it.
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask soft-deletes a task.
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error

	// ReorderTask moves a task to targetPosition within the targetStatus
	// column. Positions are counted among the column's other tasks and
	// clamped to the column bounds.
	ReorderTask(
		ctx context.Context,
		ownerID, taskID uuid.UUID,
		targetStatus string,
		targetPosition int,
	) (*domain.Task, error)
}

// TaskServiceOption customizes a TaskService.
type TaskServiceOption func(*taskServiceImpl)

// WithMaxAttempts sets how many times a conflicting write is attempted.
// Values below 1 are ignored.
func WithMaxAttempts(n int) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

// WithTracerProvider sets the provider spans are recorded with. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithClock sets the time source for updated_at stamps.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo        TaskRepository
	engine      ordering.Engine
	emitter     events.EventEmitter
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
	maxAttempts int
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	repo TaskRepository,
	engine ordering.Engine,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		repo:        repo,
		engine:      engine,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "task_service")),
		tracer:      otel.GetTracerProvider().Tracer(tracerName),
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID) (summaries []domain.TaskSummary, err error) {
	ctx, span := s.startSpan(ctx, "ListTasks", ownerID)
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	summaries, err = s.repo.ListSummaries(ctx, ownerID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("user_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list", "failed to list tasks", classify(err))
	}

	span.SetAttributes(attribute.Int("task_count", len(summaries)))
	return summaries, nil
}

// GetBoard implements TaskService.GetBoard
func (s *taskServiceImpl) GetBoard(ctx context.Context, ownerID uuid.UUID) (board *domain.Board, err error) {
	ctx, span := s.startSpan(ctx, "GetBoard", ownerID)
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	summaries, err := s.repo.ListSummaries(ctx, ownerID)
	if err != nil {
		log.Error("failed to load board",
			slog.String("user_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("board", "failed to load board", classify(err))
	}

	return domain.NewBoard(summaries), nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (task *domain.Task, err error) {
	ctx, span := s.startSpan(ctx, "GetTask", ownerID, attribute.String("task_id", taskID.String()))
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err = s.repo.GetByID(ctx, ownerID, taskID)
	if err != nil {
		logLookupFailure(log, "failed to get task", taskID, err)
		return nil, NewTaskServiceError("get", "failed to get task", classify(err))
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.TaskFields,
) (created *domain.Task, err error) {
	ctx, span := s.startSpan(ctx, "CreateTask", ownerID)
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	draft, err := domain.NewTask(ownerID, fields)
	if err != nil {
		log.Debug("invalid task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create", "invalid task", classify(err))
	}
	span.SetAttributes(
		attribute.String("task_id", draft.ID.String()),
		attribute.String("status", string(draft.Status)),
	)

	var pending []*events.BoardEvent
	err = s.runWithRetry(ctx, span, "create", func(ctx context.Context, repo TaskRepository) error {
		pending = nil
		created = nil

		if err := repo.LockColumn(ctx, ownerID, draft.Status); err != nil {
			return err
		}
		siblings, err := repo.ListColumn(ctx, ownerID, draft.Status, uuid.Nil)
		if err != nil {
			return err
		}

		placement := s.engine.Append(sortKeys(siblings))
		if placement.Rebalanced {
			if err := s.rebalance(ctx, repo, ownerID, draft.Status, siblings, placement, &pending); err != nil {
				return err
			}
		}

		task := *draft
		task.SortOrder = placement.Key
		if err := repo.Create(ctx, &task); err != nil {
			return err
		}

		created = &task
		pending = append(pending, s.newEvent(ctx, events.TypeTaskCreated, ownerID, task.ID, nil))
		span.SetAttributes(attribute.Bool("rebalanced", placement.Rebalanced))
		return nil
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("user_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create", "failed to create task", classify(err))
	}

	s.emit(ctx, pending)
	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("status", string(created.Status)),
		slog.Float64("sort_order", created.SortOrder))
	return created, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (updated *domain.Task, err error) {
	ctx, span := s.startSpan(ctx, "UpdateTask", ownerID, attribute.String("task_id", taskID.String()))
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		task, err := s.repo.GetByID(ctx, ownerID, taskID)
		if err != nil {
			logLookupFailure(log, "failed to get task for empty update", taskID, err)
			return nil, NewTaskServiceError("update", "failed to get task", classify(err))
		}
		return task, nil
	}

	if patch.Status != nil {
		status, err := domain.ParseStatus(string(*patch.Status))
		if err != nil {
			return nil, NewTaskServiceError("update", "invalid status", err)
		}
		patch.Status = &status
		span.SetAttributes(attribute.String("status", string(status)))
	}

	var pending []*events.BoardEvent
	err = s.runWithRetry(ctx, span, "update", func(ctx context.Context, repo TaskRepository) error {
		pending = nil
		updated = nil

		var (
			task *domain.Task
			err  error
		)
		if patch.Status != nil {
			task, err = lockTask(ctx, repo, ownerID, taskID, patch.Status)
		} else {
			task, err = repo.GetByIDForUpdate(ctx, ownerID, taskID)
		}
		if err != nil {
			return err
		}
		previous := task.Status
		if err := task.ApplyPatch(patch, s.now()); err != nil {
			return err
		}

		if task.Status != previous {
			siblings, err := repo.ListColumn(ctx, ownerID, task.Status, task.ID)
			if err != nil {
				return err
			}
			for _, sib := range siblings {
				if sib.SortOrder == task.SortOrder {
					return fmt.Errorf("%w: sort key %v is already used in %s; reorder the task instead",
						ErrConflict, task.SortOrder, task.Status)
				}
			}
		}

		if err := repo.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		pending = append(pending, s.newEvent(ctx, events.TypeTaskUpdated, ownerID, task.ID, nil))
		return nil
	})
	if err != nil {
		logLookupFailure(log, "failed to update task", taskID, err)
		return nil, NewTaskServiceError("update", "failed to update task", classify(err))
	}

	s.emit(ctx, pending)
	log.Info("task updated", slog.String("task_id", taskID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteTask", ownerID, attribute.String("task_id", taskID.String()))
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	err = s.runWithRetry(ctx, span, "delete", func(ctx context.Context, repo TaskRepository) error {
		task, err := lockTask(ctx, repo, ownerID, taskID, nil)
		if err != nil {
			return err
		}
		if err := task.MarkDeleted(s.now()); err != nil {
			return err
		}
		return repo.SoftDelete(ctx, ownerID, taskID, task.UpdatedAt)
	})
	if err != nil {
		logLookupFailure(log, "failed to delete task", taskID, err)
		return NewTaskServiceError("delete", "failed to delete task", classify(err))
	}

	s.emit(ctx, []*events.BoardEvent{s.newEvent(ctx, events.TypeTaskDeleted, ownerID, taskID, nil)})
	log.Info("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

// ReorderTask implements TaskService.ReorderTask
func (s *taskServiceImpl) ReorderTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	targetStatus string,
	targetPosition int,
) (moved *domain.Task, err error) {
	ctx, span := s.startSpan(ctx, "ReorderTask", ownerID,
		attribute.String("task_id", taskID.String()),
		attribute.String("status", targetStatus),
		attribute.Int("position", targetPosition),
	)
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	status, err := domain.ParseStatus(targetStatus)
	if err != nil {
		log.Debug("invalid reorder target", slog.String("target_status", targetStatus))
		return nil, NewTaskServiceError("reorder", "invalid target status", err)
	}

	var pending []*events.BoardEvent
	err = s.runWithRetry(ctx, span, "reorder", func(ctx context.Context, repo TaskRepository) error {
		pending = nil
		moved = nil

		task, err := lockTask(ctx, repo, ownerID, taskID, &status)
		if err != nil {
			return err
		}
		from := task.Status

		siblings, err := repo.ListColumn(ctx, ownerID, status, task.ID)
		if err != nil {
			return err
		}

		placement := s.engine.Place(targetPosition, sortKeys(siblings))
		if placement.Rebalanced {
			if err := s.rebalance(ctx, repo, ownerID, status, siblings, placement, &pending); err != nil {
				return err
			}
		}

		if err := task.MoveTo(status, placement.Key, s.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, task); err != nil {
			return err
		}

		moved = task
		pending = append(pending, s.newEvent(ctx, events.TypeTaskReordered, ownerID, task.ID, events.TaskMovedPayload{
			FromStatus: string(from),
			ToStatus:   string(status),
			Position:   placement.Position,
			SortOrder:  placement.Key,
		}))
		span.SetAttributes(attribute.Bool("rebalanced", placement.Rebalanced))
		return nil
	})
	if err != nil {
		logLookupFailure(log, "failed to reorder task", taskID, err)
		return nil, NewTaskServiceError("reorder", "failed to reorder task", classify(err))
	}

	s.emit(ctx, pending)
	log.Info("task reordered",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(moved.Status)),
		slog.Float64("sort_order", moved.SortOrder))
	return moved, nil
}

// lockTask locks the column the task is in and, when target is given, the
// target column, always in board order so concurrent movers cannot deadlock
// on each other. The task is then read under a row lock. If it changed
// column before the locks were granted, a store conflict is returned and the
// whole attempt is retried.
func lockTask(
	ctx context.Context,
	repo TaskRepository,
	ownerID, taskID uuid.UUID,
	target *domain.Status,
) (*domain.Task, error) {
	current, err := repo.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	columns := []domain.Status{current.Status}
	if target != nil && *target != current.Status {
		columns = append(columns, *target)
		slices.SortFunc(columns, func(a, b domain.Status) int { return a.Rank() - b.Rank() })
	}
	for _, status := range columns {
		if err := repo.LockColumn(ctx, ownerID, status); err != nil {
			return nil, err
		}
	}

	task, err := repo.GetByIDForUpdate(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != current.Status {
		return nil, fmt.Errorf("%w: task %s moved from %s to %s while its column was being locked",
			store.ErrConflict, taskID, current.Status, task.Status)
	}
	return task, nil
}

// rebalance writes renumbered keys for siblings and records the event.
func (s *taskServiceImpl) rebalance(
	ctx context.Context,
	repo TaskRepository,
	ownerID uuid.UUID,
	status domain.Status,
	siblings []*domain.Task,
	placement ordering.Placement,
	pending *[]*events.BoardEvent,
) error {
	keys := make([]store.SortKey, len(siblings))
	for i, sib := range siblings {
		keys[i] = store.SortKey{TaskID: sib.ID, SortOrder: placement.SiblingKeys[i]}
	}
	if err := repo.UpdateSortOrders(ctx, ownerID, status, keys); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("column rebalanced",
		slog.String("user_id", ownerID.String()),
		slog.String("status", string(status)),
		slog.Int("task_count", len(siblings)))

	*pending = append(*pending, s.newEvent(ctx, events.TypeColumnRebalanced, ownerID, uuid.Nil,
		events.ColumnRebalancedPayload{Status: string(status), TaskCount: len(siblings)}))
	return nil
}

// runWithRetry runs fn in a transaction, retrying the whole transaction
// while it fails with a store conflict. The last error is returned once the
// attempts are used up.
func (s *taskServiceImpl) runWithRetry(
	ctx context.Context,
	span trace.Span,
	operation string,
	fn func(ctx context.Context, repo TaskRepository) error,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		span.SetAttributes(attribute.Int("attempt", attempt))

		err = s.repo.RunInTx(ctx, fn)
		if err == nil || !store.IsConflictError(err) {
			return err
		}

		span.AddEvent("write conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
		log.Warn("write conflict",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.maxAttempts),
			slog.String("error", err.Error()))

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func (s *taskServiceImpl) newEvent(
	ctx context.Context,
	eventType string,
	ownerID, taskID uuid.UUID,
	payload any,
) *events.BoardEvent {
	event, err := events.NewBoardEvent(eventType, ownerID, taskID, payload)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to build board event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return nil
	}
	return event
}

// emit publishes committed events. Handler failures are logged only; the
// change has already been committed.
func (s *taskServiceImpl) emit(ctx context.Context, pending []*events.BoardEvent) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	for _, event := range pending {
		if event == nil {
			continue
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Warn("board event handler failed",
				slog.String("event_type", event.Type),
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}

func (s *taskServiceImpl) startSpan(
	ctx context.Context,
	name string,
	ownerID uuid.UUID,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("owner_id", ownerID.String()))
	return s.tracer.Start(ctx, "TaskService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
	}
	span.End()
}

// logLookupFailure logs expected outcomes such as not found at debug level
// and everything else at error level.
func logLookupFailure(log *slog.Logger, msg string, taskID uuid.UUID, err error) {
	level := slog.LevelError
	switch KindOf(classify(err)) {
	case KindNotFound, KindValidation, KindConflict:
		level = slog.LevelDebug
	}
	log.LogAttrs(context.Background(), level, msg,
		slog.String("task_id", taskID.String()),
		slog.String("error", err.Error()))
}

func sortKeys(tasks []*domain.Task) []float64 {
	keys := make([]float64, len(tasks))
	for i, t := range tasks {
		keys[i] = t.SortOrder
	}
	return keys
}
