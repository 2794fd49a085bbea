package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies an in-app notification.
type NotificationType string

// Possible notification types
const (
	NotificationTaskAssigned    NotificationType = "TASK_ASSIGNED"
	NotificationTaskReassigned  NotificationType = "TASK_REASSIGNED"
	NotificationTaskUpdated     NotificationType = "TASK_UPDATED"
	NotificationTaskDeleted     NotificationType = "TASK_DELETED"
	NotificationCommentAdded    NotificationType = "COMMENT_ADDED"
	NotificationDeadlineWarning NotificationType = "DEADLINE_WARNING"
	NotificationEmail           NotificationType = "EMAIL"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTaskAssigned, NotificationTaskReassigned, NotificationTaskUpdated,
		NotificationTaskDeleted, NotificationCommentAdded, NotificationDeadlineWarning,
		NotificationEmail:
		return true
	}
	return false
}

// Notification is a message to a single user. Only IsRead changes after
// creation.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	UserID    uuid.UUID        `json:"user_id"`
	TaskID    *uuid.UUID       `json:"task_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification creates an unread notification. taskID may be nil.
func NewNotification(
	typ NotificationType,
	userID uuid.UUID,
	taskID *uuid.UUID,
	title, message string,
	now time.Time,
) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		Type:      typ,
		Title:     strings.TrimSpace(title),
		Message:   strings.TrimSpace(message),
		UserID:    userID,
		TaskID:    taskID,
		CreatedAt: now.UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks that the notification holds consistent data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}
	if !n.Type.IsValid() {
		return NewValidationError("type", "is invalid")
	}
	if n.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required")
	}
	if n.Title == "" {
		return NewValidationError("title", "is required")
	}
	return nil
}

// Truncate shortens s to at most max runes, appending an ellipsis when it
// cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
