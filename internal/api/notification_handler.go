package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// NotificationService is the notification behavior the handlers need.
type NotificationService interface {
	List(ctx context.Context, p domain.Principal, unreadOnly bool, limit int) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, p domain.Principal) (int, error)
	MarkRead(ctx context.Context, p domain.Principal, ids []uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, p domain.Principal) (int, error)
	Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error
}

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	notifications NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(notifications NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// List handles GET /api/notifications?unread=true&limit=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	unread := r.URL.Query().Get("unread") == "true"

	ns, err := h.notifications.List(r.Context(), p, unread, limit)
	if err != nil {
		HandleAPIError(w, r, err, "failed to list notifications")
		return
	}
	if ns == nil {
		ns = []*domain.Notification{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ns)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "failed to count notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{Count: n})
}

// MarkRead handles PUT /api/notifications.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	var req MarkNotificationsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var n int
	var err error
	if req.MarkAll {
		n, err = h.notifications.MarkAllRead(r.Context(), p)
	} else {
		n, err = h.notifications.MarkRead(r.Context(), p, req.NotificationIDs)
	}
	if err != nil {
		HandleAPIError(w, r, err, "failed to update notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MarkNotificationsResponse{Updated: n})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(r.Context(), p, id); err != nil {
		HandleAPIError(w, r, err, "failed to delete notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
