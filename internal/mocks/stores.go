package mocks

import "github.com/google/uuid"

// Stores is a linked set of in-memory stores. Deleting a task cascades to
// its comments and notifications.
type Stores struct {
	Users         *MockUserStore
	Tasks         *MockTaskStore
	Comments      *MockCommentStore
	Notifications *MockNotificationStore
}

// NewStores creates an empty linked set of stores.
func NewStores() *Stores {
	users := NewMockUserStore()
	tasks := NewMockTaskStore(users)
	s := &Stores{
		Users:         users,
		Tasks:         tasks,
		Comments:      NewMockCommentStore(users, tasks),
		Notifications: NewMockNotificationStore(),
	}
	tasks.OnDelete = func(id uuid.UUID) {
		s.Comments.DeleteByTask(id)
		s.Notifications.DeleteByTask(id)
	}
	return s
}
