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

// MockNotificationStore is an in-memory store.NotificationStore.
type MockNotificationStore struct {
	CreateFn     func(ctx context.Context, n *domain.Notification) error
	CreateManyFn func(ctx context.Context, ns []*domain.Notification) error
	ListByUserFn func(ctx context.Context, userID uuid.UUID, filter store.NotificationFilter) ([]*domain.Notification, error)

	mu              sync.Mutex
	notifications   []*domain.Notification
	CreateManyCalls int
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// NewMockNotificationStore creates an empty store.
func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{}
}

// Create implements store.NotificationStore.
func (m *MockNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	return m.insert(n)
}

// CreateMany implements store.NotificationStore.
func (m *MockNotificationStore) CreateMany(ctx context.Context, ns []*domain.Notification) error {
	m.mu.Lock()
	m.CreateManyCalls++
	m.mu.Unlock()
	if m.CreateManyFn != nil {
		return m.CreateManyFn(ctx, ns)
	}
	for _, n := range ns {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return m.insert(ns...)
}

// ListByUser implements store.NotificationStore.
func (m *MockNotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.NotificationFilter,
) ([]*domain.Notification, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, filter)
	}
	out := m.Find(func(n *domain.Notification) bool {
		return n.UserID == userID && (!filter.UnreadOnly || !n.IsRead)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountUnread implements store.NotificationStore.
func (m *MockNotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	return len(m.Find(func(n *domain.Notification) bool { return n.UserID == userID && !n.IsRead })), nil
}

// MarkRead implements store.NotificationStore.
func (m *MockNotificationStore) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.markRead(func(n *domain.Notification) bool { return n.UserID == userID && want[n.ID] }), nil
}

// MarkAllRead implements store.NotificationStore.
func (m *MockNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int, error) {
	return m.markRead(func(n *domain.Notification) bool { return n.UserID == userID }), nil
}

// Delete implements store.NotificationStore.
func (m *MockNotificationStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

// ExistsSince implements store.NotificationStore.
func (m *MockNotificationStore) ExistsSince(
	_ context.Context,
	taskID uuid.UUID,
	typ domain.NotificationType,
	since time.Time,
) (bool, error) {
	found := m.Find(func(n *domain.Notification) bool {
		return n.TaskID != nil && *n.TaskID == taskID && n.Type == typ && !n.CreatedAt.Before(since)
	})
	return len(found) > 0, nil
}

// DeleteByTask removes every notification referencing taskID, emulating the
// foreign key cascade.
func (m *MockNotificationStore) DeleteByTask(taskID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.TaskID == nil || *n.TaskID != taskID {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
}

// All returns copies of every stored notification in insertion order.
func (m *MockNotificationStore) All() []*domain.Notification {
	return m.Find(func(*domain.Notification) bool { return true })
}

// Find returns copies of the stored notifications matching keep.
func (m *MockNotificationStore) Find(keep func(*domain.Notification) bool) []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.notifications {
		if keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

func (m *MockNotificationStore) insert(ns ...*domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range ns {
		cp := *n
		m.notifications = append(m.notifications, &cp)
	}
	return nil
}

func (m *MockNotificationStore) markRead(match func(*domain.Notification) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := 0
	for _, n := range m.notifications {
		if !n.IsRead && match(n) {
			n.IsRead = true
			changed++
		}
	}
	return changed
}
