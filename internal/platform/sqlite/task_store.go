package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

type taskRow struct {
	ID           uuid.UUID     `db:"id"`
	Title        string        `db:"title"`
	Description  string        `db:"description"`
	Status       string        `db:"status"`
	Priority     string        `db:"priority"`
	DueDate      sql.NullTime  `db:"due_date"`
	CompletedAt  sql.NullTime  `db:"completed_at"`
	AssignedToID uuid.NullUUID `db:"assigned_to_id"`
	CreatedByID  uuid.UUID     `db:"created_by_id"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`

	AssigneeName  sql.NullString `db:"assignee_name"`
	AssigneeEmail sql.NullString `db:"assignee_email"`
	AssigneeRole  sql.NullString `db:"assignee_role"`
	CreatorName   string         `db:"creator_name"`
	CreatorEmail  string         `db:"creator_email"`
	CreatorRole   string         `db:"creator_role"`
}

func (r taskRow) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		CreatedByID: r.CreatedByID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		CreatedBy: &domain.UserSummary{
			ID:    r.CreatedByID,
			Name:  r.CreatorName,
			Email: r.CreatorEmail,
			Role:  domain.Role(r.CreatorRole),
		},
	}
	if r.DueDate.Valid {
		d := r.DueDate.Time.UTC()
		t.DueDate = &d
	}
	if r.CompletedAt.Valid {
		c := r.CompletedAt.Time.UTC()
		t.CompletedAt = &c
	}
	if r.AssignedToID.Valid {
		id := r.AssignedToID.UUID
		t.AssignedToID = &id
		if r.AssigneeName.Valid {
			t.AssignedTo = &domain.UserSummary{
				ID:    id,
				Name:  r.AssigneeName.String,
				Email: r.AssigneeEmail.String,
				Role:  domain.Role(r.AssigneeRole.String),
			}
		}
	}
	return t
}

const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date, t.completed_at,
	       t.assigned_to_id, t.created_by_id, t.created_at, t.updated_at,
	       a.name AS assignee_name, a.email AS assignee_email, a.role AS assignee_role,
	       c.name AS creator_name, c.email AS creator_email, c.role AS creator_role
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assigned_to_id
	JOIN users c ON c.id = t.created_by_id`

// TaskStore implements store.TaskStore on SQLite.
type TaskStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewTaskStore creates a task store on db.
func NewTaskStore(db *sqlx.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{db: db, logger: logger.With(slog.String("component", "task_store"))}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	var assignee any
	if task.AssignedToID != nil {
		assignee = task.AssignedToID.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, completed_at,
		                   assigned_to_id, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), task.Title, task.Description, string(task.Status), string(task.Priority),
		utcPtr(task.DueDate), utcPtr(task.CompletedAt), assignee, task.CreatedByID.String(),
		task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var row taskRow
	if err := s.db.GetContext(ctx, &row, taskSelect+` WHERE t.id = ?`, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		conds = append(conds, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "t.priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.AssigneeID != nil {
		conds = append(conds, "t.assigned_to_id = ?")
		args = append(args, filter.AssigneeID.String())
	}

	query := taskSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	return s.selectTasks(ctx, query, args...)
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
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
		set("due_date", upd.DueDate.UTC())
	}
	if upd.AssignedToID != nil {
		set("assigned_to_id", upd.AssignedToID.String())
	}
	switch {
	case upd.SetCompletedAt && upd.CompletedAt != nil:
		sets = append(sets, "completed_at = COALESCE(completed_at, ?)")
		args = append(args, upd.CompletedAt.UTC())
	case upd.SetCompletedAt:
		set("completed_at", nil)
	}
	set("updated_at", upd.UpdatedAt.UTC())
	args = append(args, id.String())

	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	return rowsAffected(res, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return MapError(err)
	}
	return rowsAffected(res, store.ErrTaskNotFound)
}

// ListDueBetween implements store.TaskStore.ListDueBetween.
func (s *TaskStore) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	return s.selectTasks(ctx, taskSelect+`
		WHERE t.status <> 'COMPLETED' AND t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date <= ?
		ORDER BY t.due_date, t.id`,
		from.UTC(), to.UTC())
}

// Stats implements store.TaskStore.Stats.
func (s *TaskStore) Stats(ctx context.Context, now time.Time) (*domain.TaskStats, error) {
	var st struct {
		Total       int `db:"total"`
		Pending     int `db:"pending"`
		InProgress  int `db:"in_progress"`
		Completed   int `db:"completed"`
		Overdue     int `db:"overdue"`
		Urgent      int `db:"urgent"`
		TeamMembers int `db:"team_members"`
	}
	err := s.db.GetContext(ctx, &st, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(status = 'PENDING'), 0) AS pending,
		       COALESCE(SUM(status = 'IN_PROGRESS'), 0) AS in_progress,
		       COALESCE(SUM(status = 'COMPLETED'), 0) AS completed,
		       COALESCE(SUM(status <> 'COMPLETED' AND due_date IS NOT NULL AND due_date < ?), 0) AS overdue,
		       COALESCE(SUM(status <> 'COMPLETED' AND priority = 'URGENT'), 0) AS urgent,
		       (SELECT COUNT(*) FROM users WHERE role = 'TEAM_MEMBER') AS team_members
		FROM tasks`,
		now.UTC(),
	)
	if err != nil {
		return nil, MapError(err)
	}
	return &domain.TaskStats{
		Total:       st.Total,
		Pending:     st.Pending,
		InProgress:  st.InProgress,
		Completed:   st.Completed,
		Overdue:     st.Overdue,
		Urgent:      st.Urgent,
		TeamMembers: st.TeamMembers,
	}, nil
}

func (s *TaskStore) selectTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// utcPtr returns nil for a nil time so the driver writes NULL.
func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
