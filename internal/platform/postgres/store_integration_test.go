//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/platform/postgres"
	"github.com/phrazzld/taskdesk/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestPostgresStores(t *testing.T) {
	url := os.Getenv("TASKDESK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TASKDESK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := postgres.Open(ctx, url, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runner, err := migrations.NewRunner(db, migrations.DriverPostgres, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))

	storetest.Run(t, func(t *testing.T) storetest.Stores {
		_, err := db.ExecContext(ctx, `TRUNCATE notifications, comments, tasks, users CASCADE`)
		require.NoError(t, err)
		return storetest.Stores{
			Tasks:         postgres.NewPostgresTaskStore(db, nil),
			Users:         postgres.NewPostgresUserStore(db, nil),
			Notifications: postgres.NewPostgresNotificationStore(db, nil),
			Comments:      postgres.NewPostgresCommentStore(db, nil),
		}
	})
}
