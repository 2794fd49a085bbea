package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/policy"
	"github.com/phrazzld/taskdesk/internal/store"
)

// CommentResult is the outcome of adding a comment.
type CommentResult struct {
	Comment *domain.Comment
	Outcome Outcome
}

// CommentService adds and lists task comments.
type CommentService struct {
	tasks    store.TaskStore
	comments store.CommentStore
	fx       *effects
	now      func() time.Time
	log      *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	tasks store.TaskStore,
	comments store.CommentStore,
	notifications store.NotificationStore,
	logger *slog.Logger,
) (*CommentService, error) {
	if tasks == nil || comments == nil || notifications == nil {
		return nil, fmt.Errorf("comment service requires task, comment and notification stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "comment_service"))
	return &CommentService{
		tasks:    tasks,
		comments: comments,
		fx:       &effects{notifications: notifications, logger: log},
		now:      time.Now,
		log:      log,
	}, nil
}

// Add stores a comment by p on a task and notifies the task's other
// stakeholders with a single insert.
func (s *CommentService) Add(ctx context.Context, p domain.Principal, taskID uuid.UUID, content string) (*CommentResult, error) {
	const op = "comment.add"
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fromStore(op, err)
	}
	if !policy.CanComment(task, p) {
		return nil, domain.Forbidden(op, "you do not have access to this task")
	}

	now := s.now()
	c, err := domain.NewComment(task.ID, p.UserID, content, now)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fromStore(op, err)
	}
	c.AuthorName = p.Name

	res := &CommentResult{Comment: c}
	var ns []*domain.Notification
	for _, st := range stakeholders(task, p.UserID) {
		message := fmt.Sprintf("%s added a comment to task \"%s\"", p.Name, task.Title)
		if task.IsAssignee(st) {
			message = fmt.Sprintf("%s added a comment to your task \"%s\"", p.Name, task.Title)
		}
		if n := s.fx.newNotification(ctx, domain.NotificationCommentAdded, st, &task.ID, "New Comment", message, now); n != nil {
			ns = append(ns, n)
		}
	}
	s.fx.notify(ctx, &res.Outcome, ns...)

	logger.FromContextOrDefault(ctx, s.log).Info("comment added",
		slog.String("task_id", task.ID.String()),
		slog.String("comment_id", c.ID.String()),
		slog.Int("notified", len(ns)))
	return res, nil
}

// List returns a task's comments oldest first.
func (s *CommentService) List(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error) {
	const op = "comment.list"
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fromStore(op, err)
	}
	if !policy.CanView(task, p) {
		return nil, domain.Forbidden(op, "you do not have access to this task")
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fromStore(op, err)
	}
	return comments, nil
}

// stakeholders returns the assignee and creator of task, without duplicates
// and without author.
func stakeholders(task *domain.Task, author uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	if task.AssignedToID != nil && *task.AssignedToID != author {
		out = append(out, *task.AssignedToID)
	}
	if task.CreatedByID != author && !task.IsAssignee(task.CreatedByID) {
		out = append(out, task.CreatedByID)
	}
	return out
}
