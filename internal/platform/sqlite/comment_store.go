package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

type commentRow struct {
	ID         uuid.UUID `db:"id"`
	Content    string    `db:"content"`
	AuthorID   uuid.UUID `db:"author_id"`
	AuthorName string    `db:"author_name"`
	TaskID     uuid.UUID `db:"task_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// CommentStore implements store.CommentStore on SQLite.
type CommentStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewCommentStore creates a comment store on db.
func NewCommentStore(db *sqlx.DB, logger *slog.Logger) *CommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentStore{db: db, logger: logger.With(slog.String("component", "comment_store"))}
}

var _ store.CommentStore = (*CommentStore)(nil)

// Create implements store.CommentStore.Create.
func (s *CommentStore) Create(ctx context.Context, c *domain.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, content, author_id, task_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), c.Content, c.AuthorID.String(), c.TaskID.String(), c.CreatedAt.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("task_id", c.TaskID.String()))
		if isForeignKeyViolation(err) {
			return store.ErrTaskNotFound
		}
		return MapError(err)
	}
	return nil
}

// ListByTask implements store.CommentStore.ListByTask.
func (s *CommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	var rows []commentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.content, c.author_id, u.name AS author_name, c.task_id, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.task_id = ?
		ORDER BY c.created_at, c.id`,
		taskID.String())
	if err != nil {
		return nil, MapError(err)
	}
	out := make([]*domain.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Comment{
			ID:         r.ID,
			Content:    r.Content,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			TaskID:     r.TaskID,
			CreatedAt:  r.CreatedAt.UTC(),
		})
	}
	return out, nil
}
