package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

type notificationRow struct {
	ID        uuid.UUID     `db:"id"`
	Type      string        `db:"type"`
	Title     string        `db:"title"`
	Message   string        `db:"message"`
	IsRead    bool          `db:"is_read"`
	UserID    uuid.UUID     `db:"user_id"`
	TaskID    uuid.NullUUID `db:"task_id"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r notificationRow) toDomain() *domain.Notification {
	n := &domain.Notification{
		ID:        r.ID,
		Type:      domain.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		IsRead:    r.IsRead,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.TaskID.Valid {
		id := r.TaskID.UUID
		n.TaskID = &id
	}
	return n
}

const notificationColumns = `id, type, title, message, is_read, user_id, task_id, created_at`

// NotificationStore implements store.NotificationStore on SQLite.
type NotificationStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewNotificationStore creates a notification store on db.
func NewNotificationStore(db *sqlx.DB, logger *slog.Logger) *NotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationStore{db: db, logger: logger.With(slog.String("component", "notification_store"))}
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	return s.CreateMany(ctx, []*domain.Notification{n})
}

// CreateMany implements store.NotificationStore.CreateMany.
func (s *NotificationStore) CreateMany(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(ns))
	args := make([]any, 0, len(ns)*8)
	for _, n := range ns {
		if err := n.Validate(); err != nil {
			return err
		}
		var taskID any
		if n.TaskID != nil {
			taskID = n.TaskID.String()
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, n.ID.String(), string(n.Type), n.Title, n.Message, n.IsRead,
			n.UserID.String(), taskID, n.CreatedAt.UTC())
	}

	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert notifications",
			slog.String("error", err.Error()),
			slog.Int("count", len(ns)))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser.
func (s *NotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.NotificationFilter,
) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID.String()}
	if filter.UnreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, MapError(err)
	}
	out := make([]*domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CountUnread implements store.NotificationStore.CountUnread.
func (s *NotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID.String())
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// MarkRead implements store.NotificationStore.MarkRead.
func (s *NotificationStore) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0 AND id IN (?)`,
		userID.String(), idStrings(ids))
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, s.db.Rebind(query), args...)
}

// MarkAllRead implements store.NotificationStore.MarkAllRead.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.exec(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID.String())
}

// Delete implements store.NotificationStore.Delete.
func (s *NotificationStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return MapError(err)
	}
	return rowsAffected(res, store.ErrNotificationNotFound)
}

// ExistsSince implements store.NotificationStore.ExistsSince.
func (s *NotificationStore) ExistsSince(
	ctx context.Context,
	taskID uuid.UUID,
	typ domain.NotificationType,
	since time.Time,
) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM notifications WHERE task_id = ? AND type = ? AND created_at >= ?
		)`,
		taskID.String(), string(typ), since.UTC())
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

func (s *NotificationStore) exec(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
