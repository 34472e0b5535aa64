package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/platform/postgres"
)

const lockQuery = "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))"

func newMockAdapter(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTaskRepositoryAdapter(postgres.NewPostgresTaskStore(db, discardLogger()), db), mock
}

func TestTaskRepositoryAdapter_RunInTx(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	lockKey := owner.String() + ":" + string(domain.StatusDone)

	t.Run("commits when fn succeeds", func(t *testing.T) {
		repo, mock := newMockAdapter(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(lockQuery)).
			WithArgs(lockKey).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.RunInTx(ctx, func(ctx context.Context, txRepo TaskRepository) error {
			return txRepo.LockColumn(ctx, owner, domain.StatusDone)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns fn's error", func(t *testing.T) {
		repo, mock := newMockAdapter(t)
		sentinel := errors.New("stop")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := repo.RunInTx(ctx, func(ctx context.Context, txRepo TaskRepository) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		repo, mock := newMockAdapter(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(lockQuery)).
			WithArgs(lockKey).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.RunInTx(ctx, func(ctx context.Context, txRepo TaskRepository) error {
			return txRepo.RunInTx(ctx, func(ctx context.Context, inner TaskRepository) error {
				return inner.LockColumn(ctx, owner, domain.StatusDone)
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
