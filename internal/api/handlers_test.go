package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/phrazzld/taskdesk/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminPrincipal  = domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin, Name: "Ada"}
	memberPrincipal = domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember, Name: "Tom"}
)

type stubTasks struct {
	createFn func(domain.Principal, service.CreateTaskInput) (*service.UpdateResult, error)
	getFn    func(domain.Principal, uuid.UUID) (*domain.Task, error)
	listFn   func(domain.Principal, service.ListTasksInput) ([]*domain.Task, error)
	updateFn func(domain.Principal, uuid.UUID, service.TaskPatchInput) (*service.UpdateResult, error)
	deleteFn func(domain.Principal, uuid.UUID) (*service.Outcome, error)
	statsFn  func(domain.Principal) (*domain.TaskStats, error)
}

func (s *stubTasks) Create(_ context.Context, p domain.Principal, in service.CreateTaskInput) (*service.UpdateResult, error) {
	return s.createFn(p, in)
}

func (s *stubTasks) Get(_ context.Context, p domain.Principal, id uuid.UUID) (*domain.Task, error) {
	return s.getFn(p, id)
}

func (s *stubTasks) List(_ context.Context, p domain.Principal, in service.ListTasksInput) ([]*domain.Task, error) {
	return s.listFn(p, in)
}

func (s *stubTasks) Update(_ context.Context, p domain.Principal, id uuid.UUID, in service.TaskPatchInput) (*service.UpdateResult, error) {
	return s.updateFn(p, id, in)
}

func (s *stubTasks) Delete(_ context.Context, p domain.Principal, id uuid.UUID) (*service.Outcome, error) {
	return s.deleteFn(p, id)
}

func (s *stubTasks) Stats(_ context.Context, p domain.Principal) (*domain.TaskStats, error) {
	return s.statsFn(p)
}

type stubComments struct {
	addFn  func(domain.Principal, uuid.UUID, string) (*service.CommentResult, error)
	listFn func(domain.Principal, uuid.UUID) ([]*domain.Comment, error)
}

func (s *stubComments) Add(_ context.Context, p domain.Principal, taskID uuid.UUID, content string) (*service.CommentResult, error) {
	return s.addFn(p, taskID, content)
}

func (s *stubComments) List(_ context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error) {
	return s.listFn(p, taskID)
}

type stubNotifications struct {
	listFn    func(domain.Principal, bool, int) ([]*domain.Notification, error)
	markFn    func(domain.Principal, []uuid.UUID) (int, error)
	markAllFn func(domain.Principal) (int, error)
	deleteFn  func(domain.Principal, uuid.UUID) error
	unread    int
}

func (s *stubNotifications) List(_ context.Context, p domain.Principal, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	return s.listFn(p, unreadOnly, limit)
}

func (s *stubNotifications) UnreadCount(context.Context, domain.Principal) (int, error) {
	return s.unread, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, p domain.Principal, ids []uuid.UUID) (int, error) {
	return s.markFn(p, ids)
}

func (s *stubNotifications) MarkAllRead(_ context.Context, p domain.Principal) (int, error) {
	return s.markAllFn(p)
}

func (s *stubNotifications) Delete(_ context.Context, p domain.Principal, id uuid.UUID) error {
	return s.deleteFn(p, id)
}

type stubSignIn struct {
	session *auth.Session
	err     error
}

func (s *stubSignIn) SignIn(context.Context, string, string) (*auth.Session, error) {
	return s.session, s.err
}

// serve routes req to h under pattern, as the given principal when p is
// non-nil.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, p *domain.Principal, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			if p != nil {
				ctx = shared.WithPrincipal(ctx, *p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.TraceID)
	return body
}

func sampleTask(assignee uuid.UUID) *domain.Task {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:           uuid.New(),
		Title:        "Ship it",
		Status:       domain.TaskStatusPending,
		Priority:     domain.TaskPriorityHigh,
		AssignedToID: &assignee,
		CreatedByID:  adminPrincipal.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateTask(t *testing.T) {
	task := sampleTask(memberPrincipal.UserID)
	var got service.CreateTaskInput
	tasks := &stubTasks{createFn: func(_ domain.Principal, in service.CreateTaskInput) (*service.UpdateResult, error) {
		got = in
		return &service.UpdateResult{
			Task: task,
			Outcome: service.Outcome{
				TaskUpdated: true,
				Effects: []service.Effect{
					{Kind: service.EffectNotification, Name: "TASK_ASSIGNED", Recipient: memberPrincipal.UserID},
					{Kind: service.EffectEmail, Name: "assignment", Recipient: memberPrincipal.UserID, Err: errors.New("smtp: 421")},
				},
			},
		}, nil
	}}
	h := NewTaskHandler(tasks, &stubComments{}, nil)

	body := `{"title":"Ship it","priority":"HIGH","assigned_to_id":"` + memberPrincipal.UserID.String() + `"}`
	rec := serve(t, http.MethodPost, "/api/tasks", h.CreateTask, &adminPrincipal,
		jsonRequest(http.MethodPost, "/api/tasks", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ship it", got.Title)
	assert.Equal(t, "HIGH", got.Priority)

	var res TaskMutationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, task.ID, res.Task.ID)
	assert.True(t, res.SideEffects.TaskUpdated)
	assert.True(t, res.SideEffects.NotificationSent)
	assert.False(t, res.SideEffects.EmailSent)
	assert.Equal(t, []string{"assignment email failed"}, res.SideEffects.Errors)
	assert.NotContains(t, rec.Body.String(), "421")
}

func TestCreateTaskRejectsBadBodies(t *testing.T) {
	h := NewTaskHandler(&stubTasks{}, &stubComments{}, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "invalid request body"},
		{"malformed", `{"title":`, "invalid request body"},
		{"unknown field", `{"title":"x","assigned_to_id":"a","owner":"b"}`, "invalid request body"},
		{"missing title", `{"assigned_to_id":"a"}`, "title is required"},
		{"missing assignee", `{"title":"x"}`, "assigned_to_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, http.MethodPost, "/api/tasks", h.CreateTask, &adminPrincipal,
				jsonRequest(http.MethodPost, "/api/tasks", tt.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec).Error)
		})
	}
}

func TestUpdateTaskMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"forbidden", domain.Forbidden("task.update", "you may not change title"), http.StatusForbidden, "you may not change title"},
		{"not found", domain.NotFound("task.update", "task not found", nil), http.StatusNotFound, "task not found"},
		{"invalid", domain.NewValidationError("status", "is invalid"), http.StatusBadRequest, "status is invalid"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "failed to update task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &stubTasks{updateFn: func(domain.Principal, uuid.UUID, service.TaskPatchInput) (*service.UpdateResult, error) {
				return nil, tt.err
			}}
			h := NewTaskHandler(tasks, &stubComments{}, nil)
			target := "/api/tasks/" + uuid.NewString()
			rec := serve(t, http.MethodPatch, "/api/tasks/{id}", h.UpdateTask, &memberPrincipal,
				jsonRequest(http.MethodPatch, target, `{"title":"x"}`))

			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rec).Error)
		})
	}
}

func TestUpdateTaskPassesOnlyPresentFields(t *testing.T) {
	var got service.TaskPatchInput
	id := uuid.New()
	tasks := &stubTasks{updateFn: func(_ domain.Principal, gotID uuid.UUID, in service.TaskPatchInput) (*service.UpdateResult, error) {
		assert.Equal(t, id, gotID)
		got = in
		return &service.UpdateResult{Task: sampleTask(memberPrincipal.UserID), Outcome: service.Outcome{TaskUpdated: true}}, nil
	}}
	h := NewTaskHandler(tasks, &stubComments{}, nil)

	rec := serve(t, http.MethodPut, "/api/tasks/{id}", h.UpdateTask, &memberPrincipal,
		jsonRequest(http.MethodPut, "/api/tasks/"+id.String(), `{"status":"IN_PROGRESS"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Status)
	assert.Equal(t, "IN_PROGRESS", *got.Status)
	assert.Nil(t, got.Title)
	assert.Nil(t, got.AssignedToID)
}

func TestTaskHandlerRejectsBadPathIDs(t *testing.T) {
	h := NewTaskHandler(&stubTasks{}, &stubComments{}, nil)
	rec := serve(t, http.MethodGet, "/api/tasks/{id}", h.GetTask, &adminPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id must be a valid id", decodeError(t, rec).Error)
}

func TestTaskHandlerRequiresPrincipal(t *testing.T) {
	h := NewTaskHandler(&stubTasks{}, &stubComments{}, nil)
	rec := serve(t, http.MethodGet, "/api/tasks", h.ListTasks, nil,
		httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", decodeError(t, rec).Error)
}

func TestListTasksQuery(t *testing.T) {
	var got service.ListTasksInput
	tasks := &stubTasks{listFn: func(_ domain.Principal, in service.ListTasksInput) ([]*domain.Task, error) {
		got = in
		return nil, nil
	}}
	h := NewTaskHandler(tasks, &stubComments{}, nil)

	rec := serve(t, http.MethodGet, "/api/tasks", h.ListTasks, &adminPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/tasks?status=PENDING&priority=HIGH&limit=10&offset=20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ListTasksInput{Status: "PENDING", Priority: "HIGH", Limit: 10, Offset: 20}, got)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, http.MethodGet, "/api/tasks", h.ListTasks, &adminPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/tasks?limit=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit must be a non-negative integer", decodeError(t, rec).Error)
}

func TestDeleteTask(t *testing.T) {
	tasks := &stubTasks{deleteFn: func(p domain.Principal, _ uuid.UUID) (*service.Outcome, error) {
		if !p.IsAdmin() {
			return nil, domain.Forbidden("task.delete", "only admins can delete tasks")
		}
		return &service.Outcome{TaskUpdated: true}, nil
	}}
	h := NewTaskHandler(tasks, &stubComments{}, nil)
	target := "/api/tasks/" + uuid.NewString()

	rec := serve(t, http.MethodDelete, "/api/tasks/{id}", h.DeleteTask, &adminPrincipal,
		httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, http.MethodDelete, "/api/tasks/{id}", h.DeleteTask, &memberPrincipal,
		httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestComments(t *testing.T) {
	taskID := uuid.New()
	comments := &stubComments{
		addFn: func(p domain.Principal, id uuid.UUID, content string) (*service.CommentResult, error) {
			c := &domain.Comment{ID: uuid.New(), Content: content, AuthorID: p.UserID, AuthorName: p.Name, TaskID: id}
			return &service.CommentResult{Comment: c, Outcome: service.Outcome{TaskUpdated: true}}, nil
		},
		listFn: func(domain.Principal, uuid.UUID) ([]*domain.Comment, error) {
			return nil, nil
		},
	}
	h := NewTaskHandler(&stubTasks{}, comments, nil)
	target := "/api/tasks/" + taskID.String() + "/comments"

	rec := serve(t, http.MethodPost, "/api/tasks/{id}/comments", h.AddComment, &memberPrincipal,
		jsonRequest(http.MethodPost, target, `{"content":"on it"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var res CommentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "on it", res.Comment.Content)
	assert.Equal(t, taskID, res.Comment.TaskID)
	assert.Equal(t, "Tom", res.Comment.AuthorName)

	rec = serve(t, http.MethodPost, "/api/tasks/{id}/comments", h.AddComment, &memberPrincipal,
		jsonRequest(http.MethodPost, target, `{"content":""}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", decodeError(t, rec).Error)

	rec = serve(t, http.MethodGet, "/api/tasks/{id}/comments", h.ListComments, &memberPrincipal,
		httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStats(t *testing.T) {
	tasks := &stubTasks{statsFn: func(domain.Principal) (*domain.TaskStats, error) {
		return &domain.TaskStats{Total: 3, Pending: 2, Completed: 1, TeamMembers: 4}, nil
	}}
	h := NewTaskHandler(tasks, &stubComments{}, nil)

	rec := serve(t, http.MethodGet, "/api/stats", h.Stats, &adminPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_tasks":3,"pending_tasks":2,"in_progress_tasks":0,"completed_tasks":1,
		"overdue_tasks":0,"urgent_tasks":0,"team_members":4}`, rec.Body.String())
}

func TestNotificationHandler(t *testing.T) {
	var marked []uuid.UUID
	var markAll bool
	ns := &stubNotifications{
		unread: 3,
		listFn: func(_ domain.Principal, unreadOnly bool, limit int) ([]*domain.Notification, error) {
			assert.True(t, unreadOnly)
			assert.Equal(t, 5, limit)
			return []*domain.Notification{{ID: uuid.New(), Type: domain.NotificationTaskAssigned}}, nil
		},
		markFn: func(_ domain.Principal, ids []uuid.UUID) (int, error) {
			marked = ids
			return len(ids), nil
		},
		markAllFn: func(domain.Principal) (int, error) {
			markAll = true
			return 7, nil
		},
		deleteFn: func(domain.Principal, uuid.UUID) error {
			return domain.NotFound("notification.delete", "notification not found", nil)
		},
	}
	h := NewNotificationHandler(ns, nil)

	rec := serve(t, http.MethodGet, "/api/notifications", h.List, &memberPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/notifications?unread=true&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"TASK_ASSIGNED"`)

	rec = serve(t, http.MethodGet, "/api/notifications/unread-count", h.UnreadCount, &memberPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())

	id := uuid.New()
	rec = serve(t, http.MethodPut, "/api/notifications", h.MarkRead, &memberPrincipal,
		jsonRequest(http.MethodPut, "/api/notifications", `{"notification_ids":["`+id.String()+`"]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())
	assert.Equal(t, []uuid.UUID{id}, marked)

	rec = serve(t, http.MethodPut, "/api/notifications", h.MarkRead, &memberPrincipal,
		jsonRequest(http.MethodPut, "/api/notifications", `{"mark_all":true}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, markAll)
	assert.JSONEq(t, `{"updated":7}`, rec.Body.String())

	rec = serve(t, http.MethodPut, "/api/notifications", h.MarkRead, &memberPrincipal,
		jsonRequest(http.MethodPut, "/api/notifications", `{}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodDelete, "/api/notifications/{id}", h.Delete, &memberPrincipal,
		httptest.NewRequest(http.MethodDelete, "/api/notifications/"+id.String(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "notification not found", decodeError(t, rec).Error)
}

func TestAuthHandlerSignIn(t *testing.T) {
	cfg := config.AuthConfig{CookieName: "taskdesk_session", CookieSecure: true}
	user := &domain.User{ID: uuid.New(), Email: "ada@example.com", Name: "Ada", Role: domain.RoleAdmin, HashedPassword: "secret-hash"}
	expires := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	h := NewAuthHandler(&stubSignIn{session: &auth.Session{Token: "tok", ExpiresAt: expires, User: user}}, cfg, nil)

	rec := serve(t, http.MethodPost, "/api/auth/signin", h.SignIn, nil,
		jsonRequest(http.MethodPost, "/api/auth/signin", `{"email":"ada@example.com","password":"password1"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "taskdesk_session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	var res SignInResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestAuthHandlerSignInFailure(t *testing.T) {
	badCreds := &domain.Error{Kind: domain.KindUnauthenticated, Message: "invalid email or password"}
	h := NewAuthHandler(&stubSignIn{err: badCreds}, config.AuthConfig{CookieName: "s"}, nil)

	rec := serve(t, http.MethodPost, "/api/auth/signin", h.SignIn, nil,
		jsonRequest(http.MethodPost, "/api/auth/signin", `{"email":"ada@example.com","password":"wrong"}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decodeError(t, rec).Error)
	assert.Empty(t, rec.Result().Cookies())

	rec = serve(t, http.MethodPost, "/api/auth/signin", h.SignIn, nil,
		jsonRequest(http.MethodPost, "/api/auth/signin", `{"email":"not-an-email","password":"x"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email is not a valid email address", decodeError(t, rec).Error)
}

func TestAuthHandlerSignOutAndMe(t *testing.T) {
	h := NewAuthHandler(&stubSignIn{}, config.AuthConfig{CookieName: "s"}, nil)

	rec := serve(t, http.MethodPost, "/api/auth/signout", h.SignOut, nil,
		httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	rec = serve(t, http.MethodGet, "/api/auth/me", h.Me, &memberPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Principal
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, memberPrincipal.UserID, p.UserID)
	assert.Equal(t, domain.RoleTeamMember, p.Role)
}

type stubUsers struct{ role string }

func (s *stubUsers) List(_ context.Context, p domain.Principal, role string) ([]*domain.User, error) {
	s.role = role
	if !p.IsAdmin() {
		return nil, domain.Forbidden("user.list", "only admins can list users")
	}
	return nil, nil
}

type stubBroadcasts struct{ in service.BroadcastInput }

func (s *stubBroadcasts) Send(_ context.Context, _ domain.Principal, in service.BroadcastInput) (*service.BroadcastResult, error) {
	s.in = in
	return &service.BroadcastResult{Deliveries: []service.Delivery{
		{UserID: in.Recipients[0], EmailSent: true, NotificationSent: true},
		{UserID: in.Recipients[1], Error: "user not found"},
	}}, nil
}

func TestAdminHandler(t *testing.T) {
	users := &stubUsers{}
	broadcasts := &stubBroadcasts{}
	h := NewAdminHandler(users, broadcasts, nil)

	rec := serve(t, http.MethodGet, "/api/users", h.ListUsers, &adminPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/users?role=TEAM_MEMBER", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TEAM_MEMBER", users.role)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, http.MethodGet, "/api/users", h.ListUsers, &memberPrincipal,
		httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	a, b := uuid.New(), uuid.New()
	body, err := json.Marshal(map[string]any{"recipients": []uuid.UUID{a, b}, "subject": "Standup", "message": "10am"})
	require.NoError(t, err)
	rec = serve(t, http.MethodPost, "/api/email", h.SendEmail, &adminPrincipal,
		httptest.NewRequest(http.MethodPost, "/api/email", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Standup", broadcasts.in.Subject)

	var res BroadcastResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Deliveries, 2)
	assert.Equal(t, "user not found", res.Deliveries[1].Error)

	rec = serve(t, http.MethodPost, "/api/email", h.SendEmail, &adminPrincipal,
		jsonRequest(http.MethodPost, "/api/email", `{"recipients":[],"subject":"x","message":"y"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
