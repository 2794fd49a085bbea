package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskPriority represents how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// Field limits shared by validation and the schema.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// IsValid reports whether s is one of the defined statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// IsValid reports whether p is one of the defined priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// ParseTaskStatus converts raw input into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.IsValid() {
		return "", NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	return s, nil
}

// ParseTaskPriority converts raw input into a TaskPriority.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	p := TaskPriority(raw)
	if !p.IsValid() {
		return "", NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	return p, nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Plain dates are interpreted as midnight UTC.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, NewValidationError("due_date", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// NormalizeTitle trims a title and checks its length.
func NormalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", NewValidationError("title", "is too long")
	}
	return title, nil
}

// UserSummary is the subset of a user embedded in task reads.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Task is a unit of work assigned to a team member.
//
// Invariant: CompletedAt is non-nil if and only if Status is COMPLETED.
type Task struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Status       TaskStatus
	Priority     TaskPriority
	DueDate      *time.Time
	CompletedAt  *time.Time
	AssignedToID *uuid.UUID
	CreatedByID  uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Relations, populated by store reads.
	AssignedTo *UserSummary
	CreatedBy  *UserSummary
}

// NewTask creates a PENDING task. Priority defaults to MEDIUM when empty.
func NewTask(
	title, description string,
	priority TaskPriority,
	dueDate *time.Time,
	assignee, creator uuid.UUID,
	now time.Time,
) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}
	now = now.UTC()
	task := &Task{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		Status:       TaskStatusPending,
		Priority:     priority,
		DueDate:      dueDate,
		AssignedToID: &assignee,
		CreatedByID:  creator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks that the task holds consistent data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}
	if _, err := NormalizeTitle(t.Title); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "is too long")
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "is invalid")
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "is invalid")
	}
	if t.CreatedByID == uuid.Nil {
		return NewValidationError("created_by_id", "is required")
	}
	if t.AssignedToID != nil && *t.AssignedToID == uuid.Nil {
		return NewValidationError("assigned_to_id", "is invalid")
	}
	if (t.Status == TaskStatusCompleted) != (t.CompletedAt != nil) {
		return NewValidationError("completed_at", "must be set exactly when the task is completed")
	}
	return nil
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID uuid.UUID) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskPatch is a validated partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	Priority     *TaskPriority
	DueDate      *time.Time
	AssignedToID *uuid.UUID
}

// Fields returns the set of fields the patch touches.
func (p TaskPatch) Fields() FieldSet {
	var s FieldSet
	if p.Title != nil {
		s = s.With(FieldTitle)
	}
	if p.Description != nil {
		s = s.With(FieldDescription)
	}
	if p.Status != nil {
		s = s.With(FieldStatus)
	}
	if p.Priority != nil {
		s = s.With(FieldPriority)
	}
	if p.DueDate != nil {
		s = s.With(FieldDueDate)
	}
	if p.AssignedToID != nil {
		s = s.With(FieldAssignee)
	}
	return s
}

// TaskUpdate is the column-level write derived from a patch. It adds the
// completion timestamp bookkeeping and the modification time.
type TaskUpdate struct {
	TaskPatch

	// SetCompletedAt tells the store to write CompletedAt. A nil CompletedAt
	// clears the column; a non-nil one only fills an empty column, so a
	// stamp already in the row survives.
	SetCompletedAt bool
	CompletedAt    *time.Time

	UpdatedAt time.Time
}

// PlanUpdate derives the write for applying p to t at time now.
//
// Any status write carries the completion column with it: COMPLETED offers
// now as the stamp, every other status clears it. The store keeps a stamp
// the row already has, so the outcome depends on the row being written,
// not on the snapshot t was read from, and repeated updates converge.
func (t *Task) PlanUpdate(p TaskPatch, now time.Time) TaskUpdate {
	now = now.UTC()
	upd := TaskUpdate{TaskPatch: p, UpdatedAt: now}
	if p.Status == nil {
		return upd
	}
	upd.SetCompletedAt = true
	if *p.Status == TaskStatusCompleted {
		upd.CompletedAt = &now
	}
	return upd
}

// TaskStats holds the admin dashboard counters.
type TaskStats struct {
	Total       int `json:"total_tasks"`
	Pending     int `json:"pending_tasks"`
	InProgress  int `json:"in_progress_tasks"`
	Completed   int `json:"completed_tasks"`
	Overdue     int `json:"overdue_tasks"`
	Urgent      int `json:"urgent_tasks"`
	TeamMembers int `json:"team_members"`
}
