// Package reminder warns users about tasks that are about to fall due.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/mail"
	"github.com/phrazzld/taskdesk/internal/redact"
	"github.com/phrazzld/taskdesk/internal/store"
)

// Mailer sends deadline reminder emails.
type Mailer interface {
	SendDeadlineReminder(ctx context.Context, r mail.DeadlineReminder) error
}

// Default sweep settings.
const (
	DefaultInterval = 15 * time.Minute
	DefaultWindow   = 24 * time.Hour
)

// Result summarizes one sweep.
type Result struct {
	Due      int // tasks inside the window
	Skipped  int // already warned today
	Notified int
	Emailed  int
	Failed   int
}

// Sweeper periodically writes DEADLINE_WARNING notifications for open tasks
// due within the window, at most once per task per UTC day.
type Sweeper struct {
	tasks         store.TaskStore
	notifications store.NotificationStore
	mailer        Mailer
	interval      time.Duration
	window        time.Duration
	now           func() time.Time
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSweeper creates a Sweeper. mailer may be nil to only write
// notifications. Non-positive durations in cfg fall back to the defaults.
func NewSweeper(
	tasks store.TaskStore,
	notifications store.NotificationStore,
	mailer Mailer,
	cfg config.ReminderConfig,
	logger *slog.Logger,
) (*Sweeper, error) {
	if tasks == nil || notifications == nil {
		return nil, errors.New("reminder sweeper requires task and notification stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	interval, window := cfg.Interval(), cfg.Window()
	if interval <= 0 {
		interval = DefaultInterval
	}
	if window <= 0 {
		window = DefaultWindow
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		tasks:         tasks,
		notifications: notifications,
		mailer:        mailer,
		interval:      interval,
		window:        window,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "reminder_sweeper")),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start runs a sweep immediately and then once per interval until Stop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("reminder sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("window", s.window))
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.logger.Info("reminder sweeper stopped")
	})
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("reminder sweep failed", slog.String("error", redact.Error(err)))
		}
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep checks every task due within the window once. A failure on one task
// is counted and logged; only a failure to list tasks aborts the sweep.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result
	now := s.now().UTC()

	due, err := s.tasks.ListDueBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return res, fmt.Errorf("failed to list tasks due soon: %w", err)
	}
	res.Due = len(due)
	// Days are UTC days; the server's local zone plays no part.
	startOfDay := now.Truncate(24 * time.Hour)

	for _, task := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		sent, err := s.notifications.ExistsSince(ctx, task.ID, domain.NotificationDeadlineWarning, startOfDay)
		if err != nil {
			res.Failed++
			s.logTaskError("failed to check earlier warnings", task, err)
			continue
		}
		if sent {
			res.Skipped++
			continue
		}
		s.warn(ctx, task, now, &res)
	}

	if res.Notified > 0 || res.Failed > 0 {
		s.logger.Info("reminder sweep finished",
			slog.Int("due", res.Due),
			slog.Int("notified", res.Notified),
			slog.Int("emailed", res.Emailed),
			slog.Int("failed", res.Failed))
	}
	return res, nil
}

func (s *Sweeper) warn(ctx context.Context, task *domain.Task, now time.Time, res *Result) {
	toID, to := task.CreatedByID, task.CreatedBy
	if task.AssignedToID != nil {
		toID, to = *task.AssignedToID, task.AssignedTo
	}

	message := fmt.Sprintf("Task \"%s\" is due within %s", task.Title, hours(s.window))
	n, err := domain.NewNotification(domain.NotificationDeadlineWarning, toID, &task.ID, "Deadline Warning", message, now)
	if err == nil {
		err = s.notifications.Create(ctx, n)
	}
	if err != nil {
		res.Failed++
		s.logTaskError("failed to write deadline warning", task, err)
		return
	}
	res.Notified++

	if s.mailer == nil || to == nil {
		return
	}
	err = s.mailer.SendDeadlineReminder(ctx, mail.DeadlineReminder{To: mail.RecipientOf(to), Task: task, Now: now})
	if err != nil {
		res.Failed++
		s.logTaskError("failed to send deadline reminder", task, err)
		return
	}
	res.Emailed++
}

func (s *Sweeper) logTaskError(msg string, task *domain.Task, err error) {
	s.logger.Warn(msg,
		slog.String("task_id", task.ID.String()),
		slog.String("error", redact.Error(err)))
}

func hours(d time.Duration) string {
	h := int(d.Round(time.Hour) / time.Hour)
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}
