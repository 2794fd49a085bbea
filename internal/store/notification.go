package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

// NotificationStore defines the interface for notification persistence.
// Every method that takes a userID only touches that user's rows.
type NotificationStore interface {
	// Create inserts one notification.
	Create(ctx context.Context, n *domain.Notification) error

	// CreateMany inserts notifications with a single multi-row statement.
	CreateMany(ctx context.Context, ns []*domain.Notification) error

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]*domain.Notification, error)

	// CountUnread returns the number of unread notifications for the user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)

	// MarkRead sets is_read on the given notifications owned by the user and
	// returns the number of rows changed.
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)

	// MarkAllRead sets is_read on every notification of the user.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)

	// Delete removes one notification owned by the user.
	// Returns ErrNotificationNotFound otherwise.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ExistsSince reports whether a notification of typ for the task was
	// written at or after since.
	ExistsSince(ctx context.Context, taskID uuid.UUID, typ domain.NotificationType, since time.Time) (bool, error)
}
