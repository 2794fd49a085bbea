// Package storetest holds a behavioural test suite that every store backend
// must pass. Backends call Run from their own tests with a factory that
// returns freshly migrated, empty stores.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stores groups one implementation of each store interface.
type Stores struct {
	Tasks         store.TaskStore
	Users         store.UserStore
	Notifications store.NotificationStore
	Comments      store.CommentStore
}

// Factory returns empty stores backed by a migrated schema.
type Factory func(t *testing.T) Stores

// base is truncated to microseconds, the coarsest precision of any backend.
var base = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// Run executes the suite against the backend produced by newStores.
func Run(t *testing.T, newStores Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStores(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, newStores(t)) })
	t.Run("task updates", func(t *testing.T) { testTaskUpdates(t, newStores(t)) })
	t.Run("task listing", func(t *testing.T) { testTaskListing(t, newStores(t)) })
	t.Run("task delete cascades", func(t *testing.T) { testTaskDelete(t, newStores(t)) })
	t.Run("notifications", func(t *testing.T) { testNotifications(t, newStores(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStores(t)) })
}

// MustUser creates a user in s.
func MustUser(t *testing.T, s store.UserStore, name string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name+"@example.com", name, role, "$2a$10$hash", base)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

// MustTask creates a task assigned to assignee and created by creator.
func MustTask(t *testing.T, s store.TaskStore, title string, assignee, creator uuid.UUID, createdAt time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, "", domain.TaskPriorityMedium, nil, assignee, creator, createdAt)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), task))
	return task
}

func testUsers(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	MustUser(t, s.Users, "cy", domain.RoleTeamMember)

	got, err := s.Users.GetByEmail(ctx, "  BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)
	assert.Equal(t, domain.RoleTeamMember, got.Role)
	assert.Equal(t, bob.HashedPassword, got.HashedPassword)
	assert.True(t, bob.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	dup, err := domain.NewUser("Ada@Example.com", "Ada Again", domain.RoleAdmin, "h", base)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Users.Create(ctx, dup), store.ErrEmailExists)

	members := domain.RoleTeamMember
	list, err := s.Users.List(ctx, &members)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Name)

	all, err := s.Users.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byIDs, err := s.Users.ListByIDs(ctx, []uuid.UUID{admin.ID, uuid.New(), bob.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	n, err := s.Users.Count(ctx, &members)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func testTasks(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)

	due := base.Add(72 * time.Hour)
	task, err := domain.NewTask("Ship release", "notes", domain.TaskPriorityHigh, &due, bob.ID, admin.ID, base)
	require.NoError(t, err)
	require.NoError(t, s.Tasks.Create(ctx, task))

	got, err := s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship release", got.Title)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
	assert.Equal(t, domain.TaskPriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Nil(t, got.CompletedAt)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, bob.ID, got.AssignedTo.ID)
	assert.Equal(t, "bob", got.AssignedTo.Name)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, admin.ID, got.CreatedBy.ID)
	assert.Equal(t, domain.RoleAdmin, got.CreatedBy.Role)

	_, err = s.Tasks.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	orphan, err := domain.NewTask("Orphan", "", "", nil, uuid.New(), admin.ID, base)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Tasks.Create(ctx, orphan), store.ErrInvalidEntity)
}

func testTaskUpdates(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	cy := MustUser(t, s.Users, "cy", domain.RoleTeamMember)
	task := MustTask(t, s.Tasks, "Original", bob.ID, admin.ID, base)

	title := "Renamed"
	now := base.Add(time.Hour)
	require.NoError(t, s.Tasks.Update(ctx, task.ID, task.PlanUpdate(domain.TaskPatch{Title: &title}, now)))

	got, err := s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.TaskStatusPending, got.Status, "untouched fields keep their values")
	assert.Equal(t, domain.TaskPriorityMedium, got.Priority)
	assert.True(t, now.Equal(got.UpdatedAt))

	completed := domain.TaskStatusCompleted
	doneAt := base.Add(2 * time.Hour)
	require.NoError(t, s.Tasks.Update(ctx, task.ID, got.PlanUpdate(domain.TaskPatch{Status: &completed, AssignedToID: &cy.ID}, doneAt)))

	got, err = s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, doneAt.Equal(*got.CompletedAt))
	assert.Equal(t, cy.ID, got.AssignedTo.ID)

	inProgress := domain.TaskStatusInProgress
	require.NoError(t, s.Tasks.Update(ctx, task.ID, got.PlanUpdate(domain.TaskPatch{Status: &inProgress}, base.Add(3*time.Hour))))

	got, err = s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)

	// A write planned from a stale COMPLETED snapshot still stamps a row that
	// was reopened in between.
	stale := *got
	stale.Status = domain.TaskStatusCompleted
	stale.CompletedAt = &doneAt
	pending := domain.TaskStatusPending
	require.NoError(t, s.Tasks.Update(ctx, task.ID, got.PlanUpdate(domain.TaskPatch{Status: &pending}, base.Add(4*time.Hour))))
	redoneAt := base.Add(5 * time.Hour)
	require.NoError(t, s.Tasks.Update(ctx, task.ID, stale.PlanUpdate(domain.TaskPatch{Status: &completed}, redoneAt)))

	got, err = s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, redoneAt.Equal(*got.CompletedAt))

	// Re-completing keeps the stamp already in the row.
	require.NoError(t, s.Tasks.Update(ctx, task.ID, got.PlanUpdate(domain.TaskPatch{Status: &completed}, base.Add(6*time.Hour))))
	got, err = s.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, redoneAt.Equal(*got.CompletedAt))

	err = s.Tasks.Update(ctx, uuid.New(), domain.TaskUpdate{TaskPatch: domain.TaskPatch{Title: &title}, UpdatedAt: now})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	missing := uuid.New()
	err = s.Tasks.Update(ctx, task.ID, domain.TaskUpdate{TaskPatch: domain.TaskPatch{AssignedToID: &missing}, UpdatedAt: now})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func testTaskListing(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	cy := MustUser(t, s.Users, "cy", domain.RoleTeamMember)

	first := MustTask(t, s.Tasks, "first", bob.ID, admin.ID, base)
	second := MustTask(t, s.Tasks, "second", cy.ID, admin.ID, base.Add(time.Minute))
	third := MustTask(t, s.Tasks, "third", bob.ID, admin.ID, base.Add(2*time.Minute))

	all, err := s.Tasks.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, taskIDs(all), "newest first")

	bobs, err := s.Tasks.List(ctx, store.TaskFilter{AssigneeID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{third.ID, first.ID}, taskIDs(bobs))

	page, err := s.Tasks.List(ctx, store.TaskFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, taskIDs(page))

	urgent := domain.TaskPriorityUrgent
	completed := domain.TaskStatusCompleted
	overdue := base.Add(-time.Hour)
	soon := base.Add(6 * time.Hour)
	require.NoError(t, s.Tasks.Update(ctx, first.ID, first.PlanUpdate(domain.TaskPatch{Priority: &urgent, DueDate: &overdue}, base)))
	require.NoError(t, s.Tasks.Update(ctx, second.ID, second.PlanUpdate(domain.TaskPatch{DueDate: &soon}, base)))
	require.NoError(t, s.Tasks.Update(ctx, third.ID, third.PlanUpdate(domain.TaskPatch{Status: &completed, DueDate: &soon}, base)))

	byPriority, err := s.Tasks.List(ctx, store.TaskFilter{Priority: &urgent})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, taskIDs(byPriority))

	byStatus, err := s.Tasks.List(ctx, store.TaskFilter{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{third.ID}, taskIDs(byStatus))

	due, err := s.Tasks.ListDueBetween(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, taskIDs(due), "completed and past-due tasks are excluded")

	stats, err := s.Tasks.Stats(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{
		Total:       3,
		Pending:     2,
		InProgress:  0,
		Completed:   1,
		Overdue:     1,
		Urgent:      1,
		TeamMembers: 2,
	}, *stats)
}

func testTaskDelete(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	task := MustTask(t, s.Tasks, "doomed", bob.ID, admin.ID, base)

	c, err := domain.NewComment(task.ID, bob.ID, "hello", base)
	require.NoError(t, err)
	require.NoError(t, s.Comments.Create(ctx, c))
	n, err := domain.NewNotification(domain.NotificationTaskAssigned, bob.ID, &task.ID, "New task", "", base)
	require.NoError(t, err)
	require.NoError(t, s.Notifications.Create(ctx, n))

	require.NoError(t, s.Tasks.Delete(ctx, task.ID))
	assert.ErrorIs(t, s.Tasks.Delete(ctx, task.ID), store.ErrTaskNotFound)

	comments, err := s.Comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	count, err := s.Notifications.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testNotifications(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	task := MustTask(t, s.Tasks, "watched", bob.ID, admin.ID, base)

	mk := func(user uuid.UUID, typ domain.NotificationType, taskID *uuid.UUID, at time.Time) *domain.Notification {
		n, err := domain.NewNotification(typ, user, taskID, string(typ), "body", at)
		require.NoError(t, err)
		return n
	}
	older := mk(bob.ID, domain.NotificationTaskAssigned, &task.ID, base)
	newer := mk(bob.ID, domain.NotificationCommentAdded, &task.ID, base.Add(time.Minute))
	detached := mk(bob.ID, domain.NotificationTaskDeleted, nil, base.Add(2*time.Minute))
	foreign := mk(admin.ID, domain.NotificationTaskUpdated, &task.ID, base)

	require.NoError(t, s.Notifications.CreateMany(ctx, []*domain.Notification{older, newer, detached, foreign}))
	require.NoError(t, s.Notifications.CreateMany(ctx, nil))

	list, err := s.Notifications.ListByUser(ctx, bob.ID, store.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, detached.ID, list[0].ID)
	assert.Nil(t, list[0].TaskID)
	require.NotNil(t, list[2].TaskID)
	assert.Equal(t, task.ID, *list[2].TaskID)

	changed, err := s.Notifications.MarkRead(ctx, bob.ID, []uuid.UUID{older.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, changed, "foreign notifications are not touched")

	unread, err := s.Notifications.ListByUser(ctx, bob.ID, store.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	count, err := s.Notifications.CountUnread(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	changed, err = s.Notifications.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	assert.ErrorIs(t, s.Notifications.Delete(ctx, bob.ID, foreign.ID), store.ErrNotificationNotFound)
	require.NoError(t, s.Notifications.Delete(ctx, bob.ID, newer.ID))

	limited, err := s.Notifications.ListByUser(ctx, bob.ID, store.NotificationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	exists, err := s.Notifications.ExistsSince(ctx, task.ID, domain.NotificationTaskAssigned, base)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Notifications.ExistsSince(ctx, task.ID, domain.NotificationTaskAssigned, base.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, exists)
}

func testComments(t *testing.T, s Stores) {
	ctx := context.Background()
	admin := MustUser(t, s.Users, "ada", domain.RoleAdmin)
	bob := MustUser(t, s.Users, "bob", domain.RoleTeamMember)
	task := MustTask(t, s.Tasks, "discussed", bob.ID, admin.ID, base)

	second, err := domain.NewComment(task.ID, admin.ID, "second", base.Add(time.Minute))
	require.NoError(t, err)
	first, err := domain.NewComment(task.ID, bob.ID, "first", base)
	require.NoError(t, err)
	require.NoError(t, s.Comments.Create(ctx, second))
	require.NoError(t, s.Comments.Create(ctx, first))

	list, err := s.Comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "bob", list[0].AuthorName)
	assert.Equal(t, "ada", list[1].AuthorName)

	stray, err := domain.NewComment(uuid.New(), bob.ID, "lost", base)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Comments.Create(ctx, stray), store.ErrTaskNotFound)
}

func taskIDs(tasks []*domain.Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
