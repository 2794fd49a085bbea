package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTaskStoreUpdateWritesOnlyProvidedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresTaskStore(db, nil)
	id := uuid.New()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	status := domain.TaskStatusCompleted

	upd := domain.TaskUpdate{
		TaskPatch:      domain.TaskPatch{Status: &status},
		SetCompletedAt: true,
		CompletedAt:    &now,
		UpdatedAt:      now,
	}

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE tasks SET status = $1, completed_at = COALESCE(completed_at, $2), updated_at = $3 WHERE id = $4")).
		WithArgs("COMPLETED", now, now, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Update(context.Background(), id, upd))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStoreUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresTaskStore(db, nil)
	title := "Renamed"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.Update(context.Background(), uuid.New(), domain.TaskUpdate{
		TaskPatch: domain.TaskPatch{Title: &title},
		UpdatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStoreDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresTaskStore(db, nil).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
