package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
)

// UserService lists users.
type UserService interface {
	List(ctx context.Context, p domain.Principal, role string) ([]*domain.User, error)
}

// BroadcastService sends admin email.
type BroadcastService interface {
	Send(ctx context.Context, p domain.Principal, in service.BroadcastInput) (*service.BroadcastResult, error)
}

// AdminHandler serves user listing and broadcast email.
type AdminHandler struct {
	users      UserService
	broadcasts BroadcastService
	logger     *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users UserService, broadcasts BroadcastService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		users:      users,
		broadcasts: broadcasts,
		logger:     logger.With(slog.String("component", "admin_handler")),
	}
}

// ListUsers handles GET /api/users?role=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	users, err := h.users.List(r.Context(), p, r.URL.Query().Get("role"))
	if err != nil {
		HandleAPIError(w, r, err, "failed to list users")
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// SendEmail handles POST /api/email.
func (h *AdminHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	var req BroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.broadcasts.Send(r.Context(), p, service.BroadcastInput{
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Message:    req.Message,
		TaskID:     req.TaskID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "failed to send email")
		return
	}

	out := BroadcastResponse{Deliveries: res.Deliveries}
	for _, d := range res.Deliveries {
		if d.EmailSent {
			out.Sent++
		} else {
			out.Failed++
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
