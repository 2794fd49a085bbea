package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	tokens map[string]domain.Principal
	err    error
	seen   string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	s.seen = token
	if s.err != nil {
		return domain.Principal{}, s.err
	}
	p, ok := s.tokens[token]
	if !ok {
		return domain.Principal{}, &domain.Error{Kind: domain.KindUnauthenticated, Message: "invalid token"}
	}
	return p, nil
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	admin := domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin, Name: "Ada"}
	member := domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember, Name: "Tom"}
	stub := &stubAuthenticator{tokens: map[string]domain.Principal{"admin-token": admin, "member-token": member}}
	h := NewAuthMiddleware(stub, "session").Authenticate(http.HandlerFunc(echoPrincipal))

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var p domain.Principal
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, admin.UserID, p.UserID)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "member-token"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "member-token", stub.seen)
	})

	t.Run("bearer takes precedence over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		req.AddCookie(&http.Cookie{Name: "session", Value: "member-token"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin-token", stub.seen)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "authentication required", errorMessage(t, rec))
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid or expired session", errorMessage(t, rec))
	})
}

func TestAuthenticateInternalFailure(t *testing.T) {
	stub := &stubAuthenticator{err: errors.New("user store unavailable")}
	h := NewAuthMiddleware(stub, "session").Authenticate(http.HandlerFunc(echoPrincipal))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unavailable")
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name string
		p    *domain.Principal
		want int
	}{
		{"admin", &domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}, http.StatusOK},
		{"team member", &domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember}, http.StatusForbidden},
		{"unknown role", &domain.Principal{UserID: uuid.New(), Role: "OWNER"}, http.StatusUnauthorized},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.p != nil {
				req = req.WithContext(shared.WithPrincipal(req.Context(), *tt.p))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
