package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
)

// MockCommentStore is an in-memory store.CommentStore. When Tasks is set,
// comments on unknown tasks are rejected like the foreign key would.
type MockCommentStore struct {
	CreateFn func(ctx context.Context, c *domain.Comment) error

	Users *MockUserStore
	Tasks *MockTaskStore

	mu       sync.Mutex
	comments []*domain.Comment
}

var _ store.CommentStore = (*MockCommentStore)(nil)

// NewMockCommentStore creates an empty store.
func NewMockCommentStore(users *MockUserStore, tasks *MockTaskStore) *MockCommentStore {
	return &MockCommentStore{Users: users, Tasks: tasks}
}

// Create implements store.CommentStore.
func (m *MockCommentStore) Create(ctx context.Context, c *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if m.Tasks != nil {
		if _, err := m.Tasks.GetByID(ctx, c.TaskID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.comments = append(m.comments, &cp)
	return nil
}

// ListByTask implements store.CommentStore.
func (m *MockCommentStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	m.mu.Lock()
	var out []*domain.Comment
	for _, c := range m.comments {
		if c.TaskID == taskID {
			cp := *c
			out = append(out, &cp)
		}
	}
	m.mu.Unlock()

	for _, c := range out {
		if m.Users != nil {
			if s := m.Users.Summary(c.AuthorID); s != nil {
				c.AuthorName = s.Name
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteByTask removes the comments of taskID, emulating the cascade.
func (m *MockCommentStore) DeleteByTask(taskID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.comments[:0]
	for _, c := range m.comments {
		if c.TaskID != taskID {
			kept = append(kept, c)
		}
	}
	m.comments = kept
}
