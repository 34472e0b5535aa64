//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/store"
	"github.com/phrazzld/devtracker-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, s store.TaskStore, owner uuid.UUID, title string, status domain.Status, key float64) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner, domain.TaskFields{Title: title, Status: status})
	require.NoError(t, err)
	task.SortOrder = key
	require.NoError(t, s.Create(context.Background(), task))
	return task
}

func TestTaskStoreIntegration_RoundTrip(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)

		due := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
		task, err := domain.NewTask(owner, domain.TaskFields{
			Title:              "Plan sprint",
			Motivation:         "focus",
			AcceptanceCriteria: "board is groomed",
			DueDate:            &due,
		})
		require.NoError(t, err)
		task.SortOrder = 1000
		require.NoError(t, s.Create(ctx, task))

		got, err := s.GetByID(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Plan sprint", got.Title)
		assert.Equal(t, "focus", got.Motivation)
		assert.Empty(t, got.Description)
		assert.Equal(t, domain.StatusBacklog, got.Status)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))

		_, err = s.GetByID(ctx, uuid.New(), task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound, "other owners cannot see the task")
	})
}

func TestTaskStoreIntegration_ListOrdersByBoardThenKey(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)

		createTask(t, s, owner, "done-2", domain.StatusDone, 2000)
		createTask(t, s, owner, "backlog-1", domain.StatusBacklog, 1000)
		createTask(t, s, owner, "done-1", domain.StatusDone, 1000)
		createTask(t, s, owner, "review-1", domain.StatusInReview, 5)
		gone := createTask(t, s, owner, "deleted", domain.StatusBacklog, 500)
		require.NoError(t, s.SoftDelete(ctx, owner, gone.ID, time.Now()))

		summaries, err := s.ListSummaries(ctx, owner)
		require.NoError(t, err)

		titles := make([]string, len(summaries))
		for i, sum := range summaries {
			titles[i] = sum.Title
		}
		assert.Equal(t, []string{"backlog-1", "review-1", "done-1", "done-2"}, titles)
	})
}

func TestTaskStoreIntegration_ColumnLockAndRebalance(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)

		a := createTask(t, s, owner, "a", domain.StatusInProgress, 1)
		b := createTask(t, s, owner, "b", domain.StatusInProgress, 1.0000000001)

		require.NoError(t, s.LockColumn(ctx, owner, domain.StatusInProgress))
		require.NoError(t, s.UpdateSortOrders(ctx, owner, domain.StatusInProgress, []store.SortKey{
			{TaskID: a.ID, SortOrder: 1000},
			{TaskID: b.ID, SortOrder: 2000},
		}))

		column, err := s.ListColumn(ctx, owner, domain.StatusInProgress, uuid.Nil)
		require.NoError(t, err)
		require.Len(t, column, 2)
		assert.Equal(t, 1000.0, column[0].SortOrder)
		assert.Equal(t, 2000.0, column[1].SortOrder)

		column, err = s.ListColumn(ctx, owner, domain.StatusInProgress, a.ID)
		require.NoError(t, err)
		require.Len(t, column, 1)
		assert.Equal(t, b.ID, column[0].ID)
	})
}

func TestTaskStoreIntegration_SoftDelete(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := NewPostgresTaskStore(tx, nil)
		owner := testdb.CreateTestUser(t, tx)
		task := createTask(t, s, owner, "temp", domain.StatusDone, 1000)

		require.NoError(t, s.SoftDelete(ctx, owner, task.ID, time.Now()))
		assert.ErrorIs(t, s.SoftDelete(ctx, owner, task.ID, time.Now()), store.ErrTaskNotFound)

		_, err := s.GetByID(ctx, owner, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		task.Title = "resurrected"
		assert.ErrorIs(t, s.Update(ctx, task), store.ErrTaskNotFound)

		var deleted bool
		var status string
		require.NoError(t, tx.QueryRowContext(ctx,
			`SELECT is_deleted, status FROM tasks WHERE id = $1`, task.ID).Scan(&deleted, &status))
		assert.True(t, deleted)
		assert.Equal(t, "done", status, "status is retained on soft delete")
	})
}

func TestTaskStoreIntegration_UnknownOwner(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := NewPostgresTaskStore(tx, nil)
		task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "orphan"})
		require.NoError(t, err)
		task.SortOrder = 1000

		err = s.Create(context.Background(), task)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}
