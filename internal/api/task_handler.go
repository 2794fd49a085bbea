package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
)

// TaskService is the task behavior the handlers need.
type TaskService interface {
	Create(ctx context.Context, p domain.Principal, in service.CreateTaskInput) (*service.UpdateResult, error)
	Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, p domain.Principal, in service.ListTasksInput) ([]*domain.Task, error)
	Update(ctx context.Context, p domain.Principal, id uuid.UUID, in service.TaskPatchInput) (*service.UpdateResult, error)
	Delete(ctx context.Context, p domain.Principal, id uuid.UUID) (*service.Outcome, error)
	Stats(ctx context.Context, p domain.Principal) (*domain.TaskStats, error)
}

// CommentService is the comment behavior the handlers need.
type CommentService interface {
	Add(ctx context.Context, p domain.Principal, taskID uuid.UUID, content string) (*service.CommentResult, error)
	List(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error)
}

// TaskHandler serves tasks, their comments and the dashboard statistics.
type TaskHandler struct {
	tasks    TaskService
	comments CommentService
	logger   *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks TaskService, comments CommentService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:    tasks,
		comments: comments,
		logger:   logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks?status=&priority=&assigned_to_id=&limit=&offset=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	tasks, err := h.tasks.List(r.Context(), p, service.ListTasksInput{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssigneeID: q.Get("assigned_to_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		HandleAPIError(w, r, err, "failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponses(tasks))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.tasks.Create(r.Context(), p, service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, TaskMutationResponse{
		Task:        newTaskResponse(res.Task),
		SideEffects: newSideEffectsResponse(res.Outcome),
	})
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), p, id)
	if err != nil {
		HandleAPIError(w, r, err, "failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// UpdateTask handles PUT and PATCH /api/tasks/{id}. Both are partial
// updates.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.tasks.Update(r.Context(), p, id, service.TaskPatchInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskMutationResponse{
		Task:        newTaskResponse(res.Task),
		SideEffects: newSideEffectsResponse(res.Outcome),
	})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.tasks.Delete(r.Context(), p, id); err != nil {
		HandleAPIError(w, r, err, "failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/tasks/{id}/comments.
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.comments.List(r.Context(), p, id)
	if err != nil {
		HandleAPIError(w, r, err, "failed to list comments")
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, comments)
}

// AddComment handles POST /api/tasks/{id}/comments.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.comments.Add(r.Context(), p, id, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "failed to add comment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CommentResponse{
		Comment:     res.Comment,
		SideEffects: newSideEffectsResponse(res.Outcome),
	})
}

// Stats handles GET /api/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	stats, err := h.tasks.Stats(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "failed to load statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
