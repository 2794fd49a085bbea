package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. When Users is set, reads
// populate task relations from it and writes check that referenced users
// exist.
type MockTaskStore struct {
	CreateFn         func(ctx context.Context, task *domain.Task) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn           func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn         func(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) error
	DeleteFn         func(ctx context.Context, id uuid.UUID) error
	ListDueBetweenFn func(ctx context.Context, from, to time.Time) ([]*domain.Task, error)
	StatsFn          func(ctx context.Context, now time.Time) (*domain.TaskStats, error)

	// OnDelete runs after a task is removed, to emulate cascades.
	OnDelete func(id uuid.UUID)

	Users *MockUserStore

	mu          sync.Mutex
	tasks       map[uuid.UUID]*domain.Task
	UpdateCalls []domain.TaskUpdate
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store linked to users, which may be nil.
func NewMockTaskStore(users *MockUserStore) *MockTaskStore {
	return &MockTaskStore{Users: users, tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if !m.userExists(&task.CreatedByID) || (task.AssignedToID != nil && !m.userExists(task.AssignedToID)) {
		return store.ErrInvalidEntity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	cp.AssignedTo, cp.CreatedBy = nil, nil
	m.tasks[task.ID] = &cp
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return m.read(t), nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	out := m.filter(func(t *domain.Task) bool {
		return (filter.Status == nil || t.Status == *filter.Status) &&
			(filter.Priority == nil || t.Priority == *filter.Priority) &&
			(filter.AssigneeID == nil || t.IsAssignee(*filter.AssigneeID))
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 {
		start := min(filter.Offset, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, upd)
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, upd)
	}
	if upd.AssignedToID != nil && !m.userExists(upd.AssignedToID) {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		d := *upd.DueDate
		t.DueDate = &d
	}
	if upd.AssignedToID != nil {
		a := *upd.AssignedToID
		t.AssignedToID = &a
	}
	switch {
	case upd.SetCompletedAt && upd.CompletedAt != nil:
		if t.CompletedAt == nil {
			c := *upd.CompletedAt
			t.CompletedAt = &c
		}
	case upd.SetCompletedAt:
		t.CompletedAt = nil
	}
	t.UpdatedAt = upd.UpdatedAt
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	_, ok := m.tasks[id]
	delete(m.tasks, id)
	m.mu.Unlock()
	if !ok {
		return store.ErrTaskNotFound
	}
	if m.OnDelete != nil {
		m.OnDelete(id)
	}
	return nil
}

// ListDueBetween implements store.TaskStore.
func (m *MockTaskStore) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	if m.ListDueBetweenFn != nil {
		return m.ListDueBetweenFn(ctx, from, to)
	}
	out := m.filter(func(t *domain.Task) bool {
		return t.Status != domain.TaskStatusCompleted && t.DueDate != nil &&
			!t.DueDate.Before(from) && !t.DueDate.After(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

// Stats implements store.TaskStore.
func (m *MockTaskStore) Stats(ctx context.Context, now time.Time) (*domain.TaskStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, now)
	}
	var st domain.TaskStats
	for _, t := range m.filter(func(*domain.Task) bool { return true }) {
		st.Total++
		switch t.Status {
		case domain.TaskStatusPending:
			st.Pending++
		case domain.TaskStatusInProgress:
			st.InProgress++
		case domain.TaskStatusCompleted:
			st.Completed++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Status != domain.TaskStatusCompleted && t.Priority == domain.TaskPriorityUrgent {
			st.Urgent++
		}
	}
	if m.Users != nil {
		member := domain.RoleTeamMember
		n, err := m.Users.Count(ctx, &member)
		if err != nil {
			return nil, err
		}
		st.TeamMembers = n
	}
	return &st, nil
}

// Len returns the number of stored tasks.
func (m *MockTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *MockTaskStore) filter(keep func(*domain.Task) bool) []*domain.Task {
	m.mu.Lock()
	var matched []*domain.Task
	for _, t := range m.tasks {
		if keep(t) {
			matched = append(matched, t)
		}
	}
	m.mu.Unlock()

	out := make([]*domain.Task, 0, len(matched))
	for _, t := range matched {
		out = append(out, m.read(t))
	}
	return out
}

// read returns a copy of t with relations populated.
func (m *MockTaskStore) read(t *domain.Task) *domain.Task {
	m.mu.Lock()
	cp := *t
	m.mu.Unlock()
	if m.Users != nil {
		cp.CreatedBy = m.Users.Summary(cp.CreatedByID)
		if cp.AssignedToID != nil {
			cp.AssignedTo = m.Users.Summary(*cp.AssignedToID)
		}
	}
	return &cp
}

func (m *MockTaskStore) userExists(id *uuid.UUID) bool {
	return m.Users == nil || m.Users.exists(*id)
}
