package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// TaskFilter narrows a task listing. Zero values mean "any".
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssigneeID *uuid.UUID
	Limit      int
	Offset     int
}

// TaskStore defines the interface for task persistence. Every read returns
// tasks with their AssignedTo and CreatedBy summaries populated.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its relations.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update writes the fields present in upd with a single UPDATE statement.
	// Returns ErrTaskNotFound if no row was affected.
	Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) error

	// Delete removes a task; comments and notifications cascade.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDueBetween returns non-completed tasks with a due date in
	// [from, to], soonest first.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error)

	// Stats computes dashboard counters; tasks due before now and not
	// completed count as overdue.
	Stats(ctx context.Context, now time.Time) (*domain.TaskStats, error)
}
