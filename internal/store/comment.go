package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// CommentStore defines the interface for comment persistence. Comments are
// append-only.
type CommentStore interface {
	// Create saves a new comment.
	Create(ctx context.Context, c *domain.Comment) error

	// ListByTask returns a task's comments oldest first, with AuthorName set.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
}
