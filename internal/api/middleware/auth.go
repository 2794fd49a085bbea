package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/policy"
)

// Authenticator resolves a session token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// AuthMiddleware authenticates requests by session cookie or bearer token.
type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
}

// NewAuthMiddleware creates an AuthMiddleware reading the named cookie.
func NewAuthMiddleware(auth Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, cookieName: cookieName}
}

// Authenticate rejects requests without a valid token with 401 and stores
// the principal in the context of the others. A bearer header takes
// precedence over the cookie.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.tokenFrom(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		p, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "invalid or expired session", err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "authentication error", err)
			return
		}

		ctx := shared.WithPrincipal(r.Context(), p)
		log := logger.FromContext(ctx).With(slog.String("user_id", p.UserID.String()))
		ctx = logger.WithLogger(ctx, log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated non-admins with 403. It must run after
// Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFrom(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if !policy.CanManage(p) {
			shared.RespondWithError(w, r, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) tokenFrom(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if m.cookieName == "" {
		return "", false
	}
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
