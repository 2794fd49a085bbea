package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCommentLength bounds comment content.
const MaxCommentLength = 5000

// Comment is an append-only remark on a task.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	TaskID     uuid.UUID `json:"task_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewComment creates a comment with trimmed content.
func NewComment(taskID, authorID uuid.UUID, content string, now time.Time) (*Comment, error) {
	c := &Comment{
		ID:        uuid.New(),
		Content:   strings.TrimSpace(content),
		AuthorID:  authorID,
		TaskID:    taskID,
		CreatedAt: now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the comment holds consistent data.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}
	if c.Content == "" {
		return NewValidationError("content", "is required")
	}
	if utf8.RuneCountInString(c.Content) > MaxCommentLength {
		return NewValidationError("content", "is too long")
	}
	if c.TaskID == uuid.Nil {
		return NewValidationError("task_id", "is required")
	}
	if c.AuthorID == uuid.Nil {
		return NewValidationError("author_id", "is required")
	}
	return nil
}
