package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
)

// SignInRequest is the body of POST /api/auth/signin.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// SignInResponse is returned by a successful sign-in.
type SignInResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title        string `json:"title"          validate:"required"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	DueDate      string `json:"due_date"`
	AssignedToID string `json:"assigned_to_id" validate:"required"`
}

// UpdateTaskRequest is the body of PUT and PATCH /api/tasks/{id}. Absent
// and null fields are left unchanged.
type UpdateTaskRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	DueDate      *string `json:"due_date"`
	AssignedToID *string `json:"assigned_to_id"`
}

// CreateCommentRequest is the body of POST /api/tasks/{id}/comments.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// MarkNotificationsRequest is the body of PUT /api/notifications.
type MarkNotificationsRequest struct {
	NotificationIDs []uuid.UUID `json:"notification_ids"`
	MarkAll         bool        `json:"mark_all"`
}

// Validate requires exactly one of the two modes.
func (r MarkNotificationsRequest) Validate() error {
	switch {
	case r.MarkAll && len(r.NotificationIDs) > 0:
		return domain.NewValidationError("notification_ids", "must be empty when mark_all is set")
	case !r.MarkAll && len(r.NotificationIDs) == 0:
		return domain.NewValidationError("notification_ids", "is required unless mark_all is set")
	}
	return nil
}

// BroadcastRequest is the body of POST /api/email.
type BroadcastRequest struct {
	Recipients []uuid.UUID `json:"recipients" validate:"required,min=1"`
	Subject    string      `json:"subject"    validate:"required"`
	Message    string      `json:"message"    validate:"required"`
	TaskID     *uuid.UUID  `json:"task_id"`
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
	CompletedAt  *time.Time          `json:"completed_at"`
	AssignedToID *uuid.UUID          `json:"assigned_to_id"`
	CreatedByID  uuid.UUID           `json:"created_by_id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	AssignedTo   *domain.UserSummary `json:"assigned_to"`
	CreatedBy    *domain.UserSummary `json:"created_by"`
}

// SideEffectsResponse reports the best-effort work done after a mutation.
type SideEffectsResponse struct {
	TaskUpdated      bool     `json:"task_updated"`
	NotificationSent bool     `json:"notification_sent"`
	EmailSent        bool     `json:"email_sent"`
	Errors           []string `json:"errors"`
}

// TaskMutationResponse is returned by task creation and updates.
type TaskMutationResponse struct {
	Task        TaskResponse        `json:"task"`
	SideEffects SideEffectsResponse `json:"side_effects"`
}

// CommentResponse is returned by comment creation.
type CommentResponse struct {
	Comment     *domain.Comment     `json:"comment"`
	SideEffects SideEffectsResponse `json:"side_effects"`
}

// UnreadCountResponse is returned by GET /api/notifications/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkNotificationsResponse reports how many notifications changed.
type MarkNotificationsResponse struct {
	Updated int `json:"updated"`
}

// BroadcastResponse reports the per-recipient outcome of a broadcast.
type BroadcastResponse struct {
	Sent       int                `json:"sent"`
	Failed     int                `json:"failed"`
	Deliveries []service.Delivery `json:"deliveries"`
}

func newTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		CompletedAt:  t.CompletedAt,
		AssignedToID: t.AssignedToID,
		CreatedByID:  t.CreatedByID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
	}
}

func newTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}

// newSideEffectsResponse describes failures by effect, never by raw error
// text.
func newSideEffectsResponse(o service.Outcome) SideEffectsResponse {
	res := SideEffectsResponse{
		TaskUpdated:      o.TaskUpdated,
		NotificationSent: o.NotificationSent(),
		EmailSent:        o.EmailSent(),
		Errors:           []string{},
	}
	for _, e := range o.Failed() {
		res.Errors = append(res.Errors, e.Name+" "+string(e.Kind)+" failed")
	}
	return res
}
