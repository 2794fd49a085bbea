package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/mail"
	"github.com/phrazzld/taskdesk/internal/reminder"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/phrazzld/taskdesk/internal/service/auth"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *database

	authenticator *auth.Authenticator
	tasks         *service.TaskService
	comments      *service.CommentService
	notifications *service.NotificationService
	broadcasts    *service.BroadcastService
	users         *service.UserService

	sweeper *reminder.Sweeper
}

// newApplication wires the services on top of db. The caller keeps
// ownership of db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *database) (*application, error) {
	app := &application{config: cfg, logger: logger, db: db}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	passwords := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.authenticator = auth.NewAuthenticator(db.users, tokens, passwords, logger)
	logger.Info("authentication initialized",
		slog.Duration("session_lifetime", cfg.Auth.SessionLifetime()))

	sender, err := mail.NewSender(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	mailer, err := mail.NewDispatcher(sender, cfg.Mail.From, cfg.Server.BaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail dispatcher: %w", err)
	}
	logger.Info("mail initialized", slog.String("transport", cfg.Mail.Transport))

	if app.tasks, err = service.NewTaskService(db.tasks, db.users, db.notifications, mailer, logger); err != nil {
		return nil, err
	}
	if app.comments, err = service.NewCommentService(db.tasks, db.comments, db.notifications, logger); err != nil {
		return nil, err
	}
	if app.notifications, err = service.NewNotificationService(db.notifications, logger); err != nil {
		return nil, err
	}
	if app.broadcasts, err = service.NewBroadcastService(db.users, db.tasks, db.notifications, mailer, logger); err != nil {
		return nil, err
	}
	if app.users, err = service.NewUserService(db.users, db.sql, passwords, logger); err != nil {
		return nil, err
	}

	if cfg.Reminder.Enabled {
		app.sweeper, err = reminder.NewSweeper(db.tasks, db.notifications, mailer, cfg.Reminder, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize reminder sweeper: %w", err)
		}
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if app.sweeper != nil {
		app.sweeper.Start()
		defer app.sweeper.Stop()
	}
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
