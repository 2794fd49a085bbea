package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// Listing bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// CreateTaskInput is the raw input of a task creation. Empty strings mean
// the field was not provided.
type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     string
	DueDate      string
	AssignedToID string
}

// TaskPatchInput is the raw input of a partial task update. Nil fields were
// not provided.
type TaskPatchInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *string
	AssignedToID *string
}

// Fields returns the set of fields the input provides.
func (in TaskPatchInput) Fields() domain.FieldSet {
	var s domain.FieldSet
	if in.Title != nil {
		s = s.With(domain.FieldTitle)
	}
	if in.Description != nil {
		s = s.With(domain.FieldDescription)
	}
	if in.Status != nil {
		s = s.With(domain.FieldStatus)
	}
	if in.Priority != nil {
		s = s.With(domain.FieldPriority)
	}
	if in.DueDate != nil {
		s = s.With(domain.FieldDueDate)
	}
	if in.AssignedToID != nil {
		s = s.With(domain.FieldAssignee)
	}
	return s
}

// parse validates the input and converts it into a domain patch.
func (in TaskPatchInput) parse() (domain.TaskPatch, error) {
	var p domain.TaskPatch
	if in.Title != nil {
		title, err := domain.NormalizeTitle(*in.Title)
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	if in.Description != nil {
		desc, err := normalizeDescription(*in.Description)
		if err != nil {
			return p, err
		}
		p.Description = &desc
	}
	if in.Status != nil {
		status, err := domain.ParseTaskStatus(*in.Status)
		if err != nil {
			return p, err
		}
		p.Status = &status
	}
	if in.Priority != nil {
		priority, err := domain.ParseTaskPriority(*in.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &priority
	}
	if in.DueDate != nil {
		due, err := domain.ParseDueDate(*in.DueDate)
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	if in.AssignedToID != nil {
		id, err := parseUserID("assigned_to_id", *in.AssignedToID)
		if err != nil {
			return p, err
		}
		p.AssignedToID = &id
	}
	return p, nil
}

// ListTasksInput filters a task listing. Empty strings mean "any".
type ListTasksInput struct {
	Status     string
	Priority   string
	AssigneeID string
	Limit      int
	Offset     int
}

func normalizeDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > domain.MaxDescriptionLength {
		return "", domain.NewValidationError("description", "is too long")
	}
	return desc, nil
}

func parseUserID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.NewValidationError(field, "must be a valid user id")
	}
	return id, nil
}

// parseDueDate parses an optional creation due date, which must lie in the
// future.
func parseDueDate(raw string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	due, err := domain.ParseDueDate(raw)
	if err != nil {
		return nil, err
	}
	if !due.After(now) {
		return nil, domain.NewValidationError("due_date", "must be in the future")
	}
	return &due, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
