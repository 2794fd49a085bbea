package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

// NotificationService serves a user's own notifications. Other users'
// notifications behave as if they did not exist.
type NotificationService struct {
	notifications store.NotificationStore
	log           *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications store.NotificationStore, logger *slog.Logger) (*NotificationService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notifications cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		notifications: notifications,
		log:           logger.With(slog.String("component", "notification_service")),
	}, nil
}

// List returns p's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, p domain.Principal, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	ns, err := s.notifications.ListByUser(ctx, p.UserID, store.NotificationFilter{
		UnreadOnly: unreadOnly,
		Limit:      clampLimit(limit),
	})
	if err != nil {
		return nil, fromStore("notification.list", err)
	}
	return ns, nil
}

// UnreadCount returns the number of p's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, p domain.Principal) (int, error) {
	n, err := s.notifications.CountUnread(ctx, p.UserID)
	if err != nil {
		return 0, fromStore("notification.unread_count", err)
	}
	return n, nil
}

// MarkRead marks the given notifications of p as read. Ids of other users'
// notifications are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, p domain.Principal, ids []uuid.UUID) (int, error) {
	const op = "notification.mark_read"
	if len(ids) == 0 {
		return 0, domain.NewValidationError("notification_ids", "must not be empty")
	}
	n, err := s.notifications.MarkRead(ctx, p.UserID, ids)
	if err != nil {
		return 0, fromStore(op, err)
	}
	logger.FromContextOrDefault(ctx, s.log).Debug("notifications marked read",
		slog.String("user_id", p.UserID.String()),
		slog.Int("requested", len(ids)),
		slog.Int("updated", n))
	return n, nil
}

// MarkAllRead marks every notification of p as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, p domain.Principal) (int, error) {
	n, err := s.notifications.MarkAllRead(ctx, p.UserID)
	if err != nil {
		return 0, fromStore("notification.mark_all_read", err)
	}
	return n, nil
}

// Delete removes one of p's notifications.
func (s *NotificationService) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := s.notifications.Delete(ctx, p.UserID, id); err != nil {
		return fromStore("notification.delete", err)
	}
	return nil
}
