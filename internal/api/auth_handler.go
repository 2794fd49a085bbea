package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/service/auth"
)

// SignInService verifies credentials and issues sessions.
type SignInService interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
}

// AuthHandler serves the session endpoints.
type AuthHandler struct {
	auth   SignInService
	cookie config.AuthConfig
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. The cookie settings come from the
// auth configuration.
func NewAuthHandler(svc SignInService, cfg config.AuthConfig, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:   svc,
		cookie: cfg,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// SignIn handles POST /api/auth/signin. The token is returned in the body
// and set as an HttpOnly cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "failed to sign in")
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))
	shared.RespondWithJSON(w, r, http.StatusOK, SignInResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

// SignOut handles POST /api/auth/signout by expiring the cookie. Tokens are
// stateless, so a bearer token stays valid until it expires.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session cookie cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrError(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
