package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   0,
			LogLevel:               "error",
			BaseURL:                "http://taskdesk.test",
			ShutdownTimeoutSeconds: 1,
		},
		Database: config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:"},
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret-that-is-at-least-32-bytes!!",
			SessionLifetimeMinutes: 60,
			CookieName:             "taskdesk_session",
			BCryptCost:             4,
		},
		Mail:     config.MailConfig{Transport: "log", From: "noreply@taskdesk.test"},
		Reminder: config.ReminderConfig{Enabled: false, IntervalMinutes: 60, WindowHours: 24},
	}
}

// testServer runs the full router on a migrated in-memory database seeded
// with one admin and two team members.
type testServer struct {
	t       *testing.T
	handler http.Handler
	users   map[string]*domain.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := openDatabase(ctx, cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.close() })
	require.NoError(t, db.migrate(ctx, log))

	app, err := newApplication(cfg, log, db)
	require.NoError(t, err)

	created, err := app.users.CreateUsers(ctx, []service.NewUserInput{
		{Email: "ada@example.com", Name: "Ada", Role: "ADMIN", Password: "password-ada"},
		{Email: "tom@example.com", Name: "Tom", Role: "TEAM_MEMBER", Password: "password-tom"},
		{Email: "uma@example.com", Name: "Uma", Role: "TEAM_MEMBER", Password: "password-uma"},
	}, false)
	require.NoError(t, err)

	return &testServer{
		t:       t,
		handler: app.setupRouter(),
		users:   map[string]*domain.User{"ada": created[0], "tom": created[1], "uma": created[2]},
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signIn(name string) string {
	s.t.Helper()
	u := s.users[name]
	rec := s.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    u.Email,
		"password": "password-" + name,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = s.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.signIn("tom")
	rec = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[domain.Principal](t, rec)
	assert.Equal(t, s.users["tom"].ID, me.UserID)
	assert.Equal(t, domain.RoleTeamMember, me.Role)
}

func TestSessionCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "uma@example.com", "password": "password-uma",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestAdminRoutesRejectTeamMembers(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn("tom")

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/stats"},
		{http.MethodPost, "/api/email"},
		{http.MethodDelete, "/api/tasks/00000000-0000-0000-0000-000000000001"},
	} {
		rec := s.do(route.method, route.path, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, route.path)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn("ada")
	tom := s.signIn("tom")
	uma := s.signIn("uma")

	// Create and assign.
	rec := s.do(http.MethodPost, "/api/tasks", admin, map[string]any{
		"title":          "Prepare release notes",
		"priority":       "HIGH",
		"assigned_to_id": s.users["tom"].ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[struct {
		Task struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"task"`
		SideEffects struct {
			NotificationSent bool     `json:"notification_sent"`
			EmailSent        bool     `json:"email_sent"`
			Errors           []string `json:"errors"`
		} `json:"side_effects"`
	}](t, rec)
	assert.Equal(t, "PENDING", created.Task.Status)
	assert.True(t, created.SideEffects.NotificationSent)
	assert.True(t, created.SideEffects.EmailSent)
	assert.Empty(t, created.SideEffects.Errors)
	taskPath := "/api/tasks/" + created.Task.ID

	rec = s.do(http.MethodGet, "/api/notifications/unread-count", tom, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	// Visibility.
	rec = s.do(http.MethodGet, taskPath, uma, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, "/api/tasks", uma, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// Assignee edits.
	rec = s.do(http.MethodPatch, taskPath, tom, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPatch, taskPath, tom, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPatch, taskPath, tom, map[string]any{"status": "DONE"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPut, taskPath, tom, map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"completed_at":"`)

	rec = s.do(http.MethodGet, "/api/notifications?unread=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ns := decodeBody[[]domain.Notification](t, rec)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationTaskUpdated, ns[0].Type)

	// Comments.
	rec = s.do(http.MethodPost, taskPath+"/comments", tom, map[string]any{"content": "Done, please review"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, taskPath+"/comments", uma, map[string]any{"content": "Can I help?"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, taskPath+"/comments", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decodeBody[[]domain.Comment](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, "Tom", comments[0].AuthorName)

	// Admin views.
	rec = s.do(http.MethodGet, "/api/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[domain.TaskStats](t, rec)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.TeamMembers)

	rec = s.do(http.MethodGet, "/api/users?role=TEAM_MEMBER", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.User](t, rec), 2)

	// Notifications bookkeeping.
	rec = s.do(http.MethodPut, "/api/notifications", admin, map[string]any{"mark_all": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	// Delete.
	rec = s.do(http.MethodDelete, taskPath, admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, taskPath, tom, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/notifications", tom, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ns = decodeBody[[]domain.Notification](t, rec)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationTaskDeleted, ns[0].Type)
}

func TestBroadcast(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn("ada")

	rec := s.do(http.MethodPost, "/api/tasks", admin, map[string]any{
		"title":          "Book the venue",
		"assigned_to_id": s.users["uma"].ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[struct {
		Task struct {
			ID string `json:"id"`
		} `json:"task"`
	}](t, rec)

	rec = s.do(http.MethodPost, "/api/email", admin, map[string]any{
		"recipients": []string{s.users["tom"].ID.String(), s.users["uma"].ID.String()},
		"subject":    "Standup moved",
		"message":    "Standup is at 10:30 tomorrow.",
		"task_id":    created.Task.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[struct {
		Sent   int `json:"sent"`
		Failed int `json:"failed"`
	}](t, rec)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)

	// Assignment plus the broadcast.
	rec = s.do(http.MethodGet, "/api/notifications/unread-count", s.signIn("uma"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/notifications", s.signIn("tom"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ns := decodeBody[[]domain.Notification](t, rec)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationEmail, ns[0].Type)
	assert.Equal(t, "Standup moved", ns[0].Title)
}
