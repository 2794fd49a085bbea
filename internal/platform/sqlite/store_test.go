package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/platform/sqlite"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/phrazzld/taskdesk/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTime    = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	errRollback = errors.New("rollback")
)

func openTestDB(t *testing.T) *sqlite.Stores {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runner, err := migrations.NewRunner(db.DB, migrations.DriverSQLite, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))

	return sqlite.NewStores(db, nil)
}

func TestSQLiteStores(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		s := openTestDB(t)
		return storetest.Stores{
			Tasks:         s.Tasks,
			Users:         s.Users,
			Notifications: s.Notifications,
			Comments:      s.Comments,
		}
	})
}

func TestUserStoreWithTxRollsBack(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	u, err := domain.NewUser("tx@example.com", "Tx", domain.RoleTeamMember, "hash", testTime)
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, s.DB.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.Users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	_, err = s.Users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestTaskStoreRejectsInvalidTask(t *testing.T) {
	s := openTestDB(t)

	err := s.Tasks.Create(context.Background(), &domain.Task{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
