package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/mail"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/policy"
	"github.com/phrazzld/taskdesk/internal/store"
)

// UpdateResult is the outcome of a task mutation.
type UpdateResult struct {
	Task    *domain.Task
	Outcome Outcome
}

// TaskService implements task creation, reads, updates and deletion.
type TaskService struct {
	tasks store.TaskStore
	users store.UserStore
	fx    *effects
	now   func() time.Time
	log   *slog.Logger
}

// NewTaskService creates a TaskService. mailer may be nil, in which case no
// email is attempted.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	notifications store.NotificationStore,
	mailer Mailer,
	logger *slog.Logger,
) (*TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notifications cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "task_service"))
	return &TaskService{
		tasks: tasks,
		users: users,
		fx:    &effects{notifications: notifications, mailer: mailer, logger: log},
		now:   time.Now,
		log:   log,
	}, nil
}

// Create adds a task assigned to an existing user and notifies the assignee.
func (s *TaskService) Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*UpdateResult, error) {
	const op = "task.create"
	if !policy.CanManage(p) {
		return nil, domain.Forbidden(op, "only admins can create tasks")
	}

	now := s.now()
	title, err := domain.NormalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	desc, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}
	var priority domain.TaskPriority
	if in.Priority != "" {
		if priority, err = domain.ParseTaskPriority(in.Priority); err != nil {
			return nil, err
		}
	}
	due, err := parseDueDate(in.DueDate, now)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AssignedToID) == "" {
		return nil, domain.NewValidationError("assigned_to_id", "is required")
	}
	assigneeID, err := parseUserID("assigned_to_id", in.AssignedToID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, op, assigneeID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(title, desc, priority, due, assigneeID, p.UserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fromStore(op, err)
	}
	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, fromStore(op, err)
	}

	res := &UpdateResult{Task: created, Outcome: Outcome{TaskUpdated: true}}
	s.notifyAssigned(ctx, &res.Outcome, p, created, false)

	logger.FromContextOrDefault(ctx, s.log).Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("assigned_to_id", assigneeID.String()))
	return res, nil
}

// Get returns a task the principal may view.
func (s *TaskService) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Task, error) {
	const op = "task.get"
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(op, err)
	}
	if !policy.CanView(task, p) {
		return nil, domain.Forbidden(op, "you do not have access to this task")
	}
	return task, nil
}

// List returns tasks newest first. Team members only see tasks assigned to
// them, whatever assignee filter they pass.
func (s *TaskService) List(ctx context.Context, p domain.Principal, in ListTasksInput) ([]*domain.Task, error) {
	const op = "task.list"
	filter := store.TaskFilter{Limit: clampLimit(in.Limit), Offset: max(in.Offset, 0)}
	if in.Status != "" {
		status, err := domain.ParseTaskStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if in.Priority != "" {
		priority, err := domain.ParseTaskPriority(in.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &priority
	}
	if in.AssigneeID != "" {
		id, err := parseUserID("assigned_to_id", in.AssigneeID)
		if err != nil {
			return nil, err
		}
		filter.AssigneeID = &id
	}
	if !p.IsAdmin() {
		self := p.UserID
		filter.AssigneeID = &self
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fromStore(op, err)
	}
	return tasks, nil
}

// Update applies a partial update on behalf of p.
//
// The task is loaded, every provided field is checked against the fields p
// may edit, the values are validated and then written with a single store
// update. Notifications and emails follow as best-effort side effects
// recorded in the result's Outcome; their failure never fails the call.
func (s *TaskService) Update(ctx context.Context, p domain.Principal, id uuid.UUID, in TaskPatchInput) (*UpdateResult, error) {
	const op = "task.update"
	log := logger.FromContextOrDefault(ctx, s.log)

	before, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(op, err)
	}

	requested := in.Fields()
	if requested.IsEmpty() {
		return nil, domain.InvalidArgument(op, "no fields to update")
	}
	allowed := policy.CanEdit(before, p)
	if !allowed.Covers(requested) {
		denied := requested.Minus(allowed)
		log.Info("task update denied",
			slog.String("task_id", id.String()),
			slog.String("user_id", p.UserID.String()),
			slog.Any("fields", denied.Names()))
		if allowed.IsEmpty() {
			return nil, domain.Forbidden(op, "you do not have permission to update this task")
		}
		return nil, domain.Forbidden(op, "you may not change "+strings.Join(denied.Names(), ", "))
	}

	patch, err := in.parse()
	if err != nil {
		return nil, err
	}
	if patch.AssignedToID != nil {
		if err := s.requireUser(ctx, op, *patch.AssignedToID); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Update(ctx, id, before.PlanUpdate(patch, s.now())); err != nil {
		return nil, fromStore(op, err)
	}
	after, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(op, err)
	}

	res := &UpdateResult{Task: after, Outcome: Outcome{TaskUpdated: true}}
	if patch.AssignedToID != nil && !before.IsAssignee(*patch.AssignedToID) {
		s.notifyAssigned(ctx, &res.Outcome, p, after, true)
	}
	if patch.Status != nil && *patch.Status != before.Status {
		s.notifyStatusChanged(ctx, &res.Outcome, p, after)
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.Any("fields", requested.Names()),
		slog.Int("side_effect_failures", len(res.Outcome.Errors())))
	return res, nil
}

// Delete removes a task with its comments and notifications, then tells the
// former assignee.
func (s *TaskService) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) (*Outcome, error) {
	const op = "task.delete"
	if !policy.CanManage(p) {
		return nil, domain.Forbidden(op, "only admins can delete tasks")
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(op, err)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, fromStore(op, err)
	}

	out := &Outcome{TaskUpdated: true}
	if task.AssignedToID != nil && *task.AssignedToID != p.UserID {
		n := s.fx.newNotification(ctx, domain.NotificationTaskDeleted, *task.AssignedToID, nil,
			"Task Deleted", fmt.Sprintf("Task \"%s\" has been deleted", task.Title), s.now())
		if n != nil {
			s.fx.notify(ctx, out, n)
		}
	}

	logger.FromContextOrDefault(ctx, s.log).Info("task deleted", slog.String("task_id", id.String()))
	return out, nil
}

// Stats returns the admin dashboard counters.
func (s *TaskService) Stats(ctx context.Context, p domain.Principal) (*domain.TaskStats, error) {
	const op = "task.stats"
	if !policy.CanManage(p) {
		return nil, domain.Forbidden(op, "only admins can view statistics")
	}
	stats, err := s.tasks.Stats(ctx, s.now())
	if err != nil {
		return nil, fromStore(op, err)
	}
	return stats, nil
}

func (s *TaskService) requireUser(ctx context.Context, op string, id uuid.UUID) error {
	_, err := s.users.GetByID(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUserNotFound):
		return &domain.Error{Kind: domain.KindInvalidArgument, Op: op, Field: "assigned_to_id", Message: "does not match any user", Err: err}
	default:
		return fromStore(op, err)
	}
}

// notifyAssigned tells the task's assignee about a new or changed assignment.
func (s *TaskService) notifyAssigned(ctx context.Context, out *Outcome, p domain.Principal, task *domain.Task, reassigned bool) {
	if task.AssignedToID == nil {
		return
	}
	assignee := *task.AssignedToID
	typ, title := domain.NotificationTaskAssigned, "New Task Assigned"
	if reassigned {
		typ, title = domain.NotificationTaskReassigned, "Task Reassigned"
	}
	message := fmt.Sprintf("You have been assigned to task: \"%s\"", task.Title)
	if n := s.fx.newNotification(ctx, typ, assignee, &task.ID, title, message, s.now()); n != nil {
		s.fx.notify(ctx, out, n)
	}
	if task.AssignedTo == nil {
		return
	}
	s.fx.email(ctx, out, "assignment", assignee, func() error {
		return s.fx.mailer.SendAssignment(ctx, mail.Assignment{
			To:         mail.RecipientOf(task.AssignedTo),
			Task:       task,
			AssignedBy: p.Name,
			Reassigned: reassigned,
		})
	})
}

// notifyStatusChanged tells the other party of a status change: the creator
// when the assignee made it, the assignee otherwise. Nobody is told about
// their own change.
func (s *TaskService) notifyStatusChanged(ctx context.Context, out *Outcome, p domain.Principal, task *domain.Task) {
	var to *domain.UserSummary
	var toID uuid.UUID
	if task.IsAssignee(p.UserID) {
		toID, to = task.CreatedByID, task.CreatedBy
	} else if task.AssignedToID != nil {
		toID, to = *task.AssignedToID, task.AssignedTo
	}
	if toID == uuid.Nil || toID == p.UserID {
		return
	}

	message := fmt.Sprintf("Task \"%s\" status changed to %s", task.Title, task.Status)
	n := s.fx.newNotification(ctx, domain.NotificationTaskUpdated, toID, &task.ID, "Task Status Updated", message, s.now())
	if n != nil {
		s.fx.notify(ctx, out, n)
	}
	if to == nil {
		return
	}
	s.fx.email(ctx, out, "status_update", toID, func() error {
		return s.fx.mailer.SendStatusUpdate(ctx, mail.StatusUpdate{
			To:        mail.RecipientOf(to),
			Task:      task,
			ChangedBy: p.Name,
		})
	})
}
