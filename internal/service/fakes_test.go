package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/events"
	"github.com/phrazzld/devtracker-api/internal/store"
)

// fakeBoard is shared state for fakeRepo instances. A transaction holds mu
// for its whole duration and restores a snapshot when it fails.
type fakeBoard struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*domain.Task
	failures map[string][]error
	calls    []string
	locks    []domain.Status
	txCount  int

	// interleave holds writes by another client, applied once just before
	// the named method runs. They count as already committed, so they
	// survive a rollback of the transaction they interrupt.
	interleave map[string][]func(tasks map[uuid.UUID]*domain.Task)
	committed  []func(tasks map[uuid.UUID]*domain.Task)
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		tasks:      make(map[uuid.UUID]*domain.Task),
		failures:   make(map[string][]error),
		interleave: make(map[string][]func(map[uuid.UUID]*domain.Task)),
	}
}

// interleaveBefore queues write to be committed by another client right
// before the next call to method.
func (b *fakeBoard) interleaveBefore(method string, write func(tasks map[uuid.UUID]*domain.Task)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interleave[method] = append(b.interleave[method], write)
}

// lockOrder returns the columns locked so far, in call order.
func (b *fakeBoard) lockOrder() []domain.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Status(nil), b.locks...)
}

// failNext queues errs to be returned by the next calls to method.
func (b *fakeBoard) failNext(method string, errs ...error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method] = append(b.failures[method], errs...)
}

// put stores a copy of task directly.
func (b *fakeBoard) put(task *domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := *task
	b.tasks[task.ID] = &cp
}

// get returns a copy of the stored task, including deleted ones.
func (b *fakeBoard) get(id uuid.UUID) (*domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

func (b *fakeBoard) callCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (b *fakeBoard) snapshot() map[uuid.UUID]*domain.Task {
	snap := make(map[uuid.UUID]*domain.Task, len(b.tasks))
	for id, t := range b.tasks {
		cp := *t
		snap[id] = &cp
	}
	return snap
}

// fakeRepo is an in-memory TaskRepository.
type fakeRepo struct {
	board *fakeBoard
	inTx  bool
}

func newFakeRepo(board *fakeBoard) *fakeRepo {
	return &fakeRepo{board: board}
}

// enter records the call and returns any queued failure. Outside a
// transaction it takes the board lock; the returned func releases it.
func (r *fakeRepo) enter(method string) (func(), error) {
	release := func() {}
	if !r.inTx {
		r.board.mu.Lock()
		release = r.board.mu.Unlock
	}
	r.board.calls = append(r.board.calls, method)
	if writes := r.board.interleave[method]; len(writes) > 0 {
		r.board.interleave[method] = writes[1:]
		writes[0](r.board.tasks)
		r.board.committed = append(r.board.committed, writes[0])
	}
	if queued := r.board.failures[method]; len(queued) > 0 {
		r.board.failures[method] = queued[1:]
		return release, queued[0]
	}
	return release, nil
}

func (r *fakeRepo) live(ownerID, taskID uuid.UUID) (*domain.Task, error) {
	t, ok := r.board.tasks[taskID]
	if !ok || t.UserID != ownerID || t.Deleted {
		return nil, store.ErrTaskNotFound
	}
	return t, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	release, err := r.enter("GetByID")
	defer release()
	if err != nil {
		return nil, err
	}
	t, err := r.live(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) GetByIDForUpdate(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	release, err := r.enter("GetByIDForUpdate")
	defer release()
	if err != nil {
		return nil, err
	}
	t, err := r.live(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) ListSummaries(ctx context.Context, ownerID uuid.UUID) ([]domain.TaskSummary, error) {
	release, err := r.enter("ListSummaries")
	defer release()
	if err != nil {
		return nil, err
	}
	var out []domain.TaskSummary
	for _, t := range r.board.tasks {
		if t.UserID == ownerID && !t.Deleted {
			out = append(out, t.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status.Rank() < out[j].Status.Rank()
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeRepo) ListColumn(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	excludeID uuid.UUID,
) ([]*domain.Task, error) {
	release, err := r.enter("ListColumn")
	defer release()
	if err != nil {
		return nil, err
	}
	var out []*domain.Task
	for _, t := range r.board.tasks {
		if t.UserID == ownerID && !t.Deleted && t.Status == status && t.ID != excludeID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeRepo) LockColumn(ctx context.Context, ownerID uuid.UUID, status domain.Status) error {
	release, err := r.enter("LockColumn")
	defer release()
	if err != nil {
		return err
	}
	r.board.locks = append(r.board.locks, status)
	return nil
}

func (r *fakeRepo) Create(ctx context.Context, task *domain.Task) error {
	release, err := r.enter("Create")
	defer release()
	if err != nil {
		return err
	}
	if _, exists := r.board.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	cp := *task
	r.board.tasks[task.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, task *domain.Task) error {
	release, err := r.enter("Update")
	defer release()
	if err != nil {
		return err
	}
	if _, err := r.live(task.UserID, task.ID); err != nil {
		return err
	}
	cp := *task
	r.board.tasks[task.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateSortOrders(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.Status,
	keys []store.SortKey,
) error {
	release, err := r.enter("UpdateSortOrders")
	defer release()
	if err != nil {
		return err
	}
	for _, k := range keys {
		t, err := r.live(ownerID, k.TaskID)
		if err != nil || t.Status != status {
			return fmt.Errorf("%w: task %s is no longer in %s", store.ErrConflict, k.TaskID, status)
		}
		t.SortOrder = k.SortOrder
	}
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, at time.Time) error {
	release, err := r.enter("SoftDelete")
	defer release()
	if err != nil {
		return err
	}
	t, err := r.live(ownerID, taskID)
	if err != nil {
		return err
	}
	return t.MarkDeleted(at)
}

func (r *fakeRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, repo TaskRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	r.board.mu.Lock()
	defer r.board.mu.Unlock()
	r.board.txCount++
	r.board.committed = nil
	snap := r.board.snapshot()

	if err := fn(ctx, &fakeRepo{board: r.board, inTx: true}); err != nil {
		for _, write := range r.board.committed {
			write(snap)
		}
		r.board.tasks = snap
		return err
	}
	return nil
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.BoardEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.BoardEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

var _ TaskRepository = (*fakeRepo)(nil)
