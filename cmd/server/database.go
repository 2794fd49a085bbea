package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/platform/postgres"
	"github.com/phrazzld/taskdesk/internal/platform/sqlite"
	"github.com/phrazzld/taskdesk/internal/store"
)

// database is an open connection with the stores of its driver.
type database struct {
	driver string
	sql    *sql.DB

	users         store.UserStore
	tasks         store.TaskStore
	comments      store.CommentStore
	notifications store.NotificationStore
}

// openDatabase connects to the configured database and builds its stores.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*database, error) {
	switch cfg.Driver {
	case migrations.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return &database{
			driver:        cfg.Driver,
			sql:           db,
			users:         postgres.NewPostgresUserStore(db, logger),
			tasks:         postgres.NewPostgresTaskStore(db, logger),
			comments:      postgres.NewPostgresCommentStore(db, logger),
			notifications: postgres.NewPostgresNotificationStore(db, logger),
		}, nil

	case migrations.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		s := sqlite.NewStores(db, logger)
		return &database{
			driver:        cfg.Driver,
			sql:           db.DB,
			users:         s.Users,
			tasks:         s.Tasks,
			comments:      s.Comments,
			notifications: s.Notifications,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (d *database) migrate(ctx context.Context, logger *slog.Logger) error {
	r, err := migrations.NewRunner(d.sql, d.driver, logger)
	if err != nil {
		return err
	}
	return r.Up(ctx)
}

func (d *database) close() error {
	return d.sql.Close()
}
