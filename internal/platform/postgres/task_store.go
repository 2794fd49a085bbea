package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date, t.completed_at,
	       t.assigned_to_id, t.created_by_id, t.created_at, t.updated_at,
	       a.id, a.name, a.email, a.role,
	       c.id, c.name, c.email, c.role
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assigned_to_id
	JOIN users c ON c.id = t.created_by_id`

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store on db. A nil logger uses the
// default.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, completed_at,
		                   assigned_to_id, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.DueDate, task.CompletedAt, task.AssignedToID, task.CreatedByID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != nil {
		add("t.status = $%d", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("t.priority = $%d", string(*filter.Priority))
	}
	if filter.AssigneeID != nil {
		add("t.assigned_to_id = $%d", *filter.AssigneeID)
	}

	query := taskSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return s.query(ctx, query, args...)
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Status != nil {
		set("status", string(*upd.Status))
	}
	if upd.Priority != nil {
		set("priority", string(*upd.Priority))
	}
	if upd.DueDate != nil {
		set("due_date", *upd.DueDate)
	}
	if upd.AssignedToID != nil {
		set("assigned_to_id", *upd.AssignedToID)
	}
	switch {
	case upd.SetCompletedAt && upd.CompletedAt != nil:
		args = append(args, *upd.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at = COALESCE(completed_at, $%d)", len(args)))
	case upd.SetCompletedAt:
		set("completed_at", nil)
	}
	set("updated_at", upd.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	return expectRows(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	return expectRows(result, store.ErrTaskNotFound)
}

// ListDueBetween implements store.TaskStore.ListDueBetween.
func (s *PostgresTaskStore) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	return s.query(ctx, taskSelect+`
		WHERE t.status <> 'COMPLETED' AND t.due_date BETWEEN $1 AND $2
		ORDER BY t.due_date, t.id`,
		from.UTC(), to.UTC())
}

// Stats implements store.TaskStore.Stats.
func (s *PostgresTaskStore) Stats(ctx context.Context, now time.Time) (*domain.TaskStats, error) {
	var st domain.TaskStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE status <> 'COMPLETED' AND due_date < $1),
		       COUNT(*) FILTER (WHERE status <> 'COMPLETED' AND priority = 'URGENT'),
		       (SELECT COUNT(*) FROM users WHERE role = 'TEAM_MEMBER')
		FROM tasks`,
		now.UTC(),
	).Scan(&st.Total, &st.Pending, &st.InProgress, &st.Completed, &st.Overdue, &st.Urgent, &st.TeamMembers)
	if err != nil {
		return nil, MapError(err)
	}
	return &st, nil
}

func (s *PostgresTaskStore) query(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                    domain.Task
		status, priority     string
		dueDate, completedAt sql.NullTime
		assignedToID         uuid.NullUUID
		aID                  uuid.NullUUID
		aName, aEmail, aRole sql.NullString
		creator              domain.UserSummary
		creatorRole          string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate, &completedAt,
		&assignedToID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt,
		&aID, &aName, &aEmail, &aRole,
		&creator.ID, &creator.Name, &creator.Email, &creatorRole,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		t.DueDate = &d
	}
	if completedAt.Valid {
		c := completedAt.Time.UTC()
		t.CompletedAt = &c
	}
	if assignedToID.Valid {
		id := assignedToID.UUID
		t.AssignedToID = &id
	}
	if aID.Valid {
		t.AssignedTo = &domain.UserSummary{
			ID:    aID.UUID,
			Name:  aName.String,
			Email: aEmail.String,
			Role:  domain.Role(aRole.String),
		}
	}
	creator.Role = domain.Role(creatorRole)
	t.CreatedBy = &creator
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
