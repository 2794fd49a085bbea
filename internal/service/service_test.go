package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/mocks"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// fixture wires every service to one linked set of in-memory stores.
type fixture struct {
	stores *mocks.Stores
	mailer *mocks.MockMailer

	tasks         *TaskService
	comments      *CommentService
	notifications *NotificationService
	broadcasts    *BroadcastService
	users         *UserService

	admin  *domain.User
	member *domain.User
	other  *domain.User

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{stores: mocks.NewStores(), mailer: &mocks.MockMailer{}, now: baseTime}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return f.now }

	var err error
	f.tasks, err = NewTaskService(f.stores.Tasks, f.stores.Users, f.stores.Notifications, f.mailer, log)
	require.NoError(t, err)
	f.tasks.now = clock

	f.comments, err = NewCommentService(f.stores.Tasks, f.stores.Comments, f.stores.Notifications, log)
	require.NoError(t, err)
	f.comments.now = clock

	f.notifications, err = NewNotificationService(f.stores.Notifications, log)
	require.NoError(t, err)

	f.broadcasts, err = NewBroadcastService(f.stores.Users, f.stores.Tasks, f.stores.Notifications, f.mailer, log)
	require.NoError(t, err)
	f.broadcasts.now = clock

	f.users, err = NewUserService(f.stores.Users, nil, &mocks.MockPasswordHasher{}, log)
	require.NoError(t, err)
	f.users.now = clock

	f.admin = f.addUser(t, "Ada Admin", domain.RoleAdmin)
	f.member = f.addUser(t, "Tom Member", domain.RoleTeamMember)
	f.other = f.addUser(t, "Olga Other", domain.RoleTeamMember)
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	email := uuid.NewString()[:8] + "@example.com"
	u, err := domain.NewUser(email, name, role, "hashed:password", baseTime)
	require.NoError(t, err)
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

// addTask stores a task created by the admin and assigned to assignee.
func (f *fixture) addTask(t *testing.T, title string, assignee *domain.User) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, "", domain.TaskPriorityMedium, nil, assignee.ID, f.admin.ID, f.now)
	require.NoError(t, err)
	require.NoError(t, f.stores.Tasks.Create(context.Background(), task))
	return task
}

func (f *fixture) task(t *testing.T, id uuid.UUID) *domain.Task {
	t.Helper()
	task, err := f.stores.Tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (f *fixture) notificationsFor(userID uuid.UUID) []*domain.Notification {
	return f.stores.Notifications.Find(func(n *domain.Notification) bool { return n.UserID == userID })
}

func principal(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func ptr[T any](v T) *T {
	return &v
}
