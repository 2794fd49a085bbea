package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/store"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Authenticator signs users in and resolves session tokens to principals.
type Authenticator struct {
	users     store.UserStore
	tokens    TokenService
	passwords PasswordHasher
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(
	users store.UserStore,
	tokens TokenService,
	passwords PasswordHasher,
	logger *slog.Logger,
) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger.With(slog.String("component", "authenticator")),
	}
}

// SignIn verifies the credentials and issues a session token.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.signin"
	log := logger.FromContextOrDefault(ctx, a.logger)

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.Internal(op, err)
		}
		_ = a.passwords.Compare(dummyHash, password)
		log.Info("sign-in rejected", slog.String("reason", "unknown email"))
		return nil, unauthenticated(op, ErrInvalidCredentials)
	}
	if err := a.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Info("sign-in rejected",
			slog.String("reason", "password mismatch"),
			slog.String("user_id", user.ID.String()))
		return nil, unauthenticated(op, ErrInvalidCredentials)
	}

	token, expires, err := a.tokens.GenerateToken(ctx, principalOf(user))
	if err != nil {
		return nil, domain.Internal(op, err)
	}

	log.Info("user signed in", slog.String("user_id", user.ID.String()))
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves a session token to the principal it was issued for.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := a.tokens.ValidateToken(ctx, token)
	if err != nil {
		return domain.Principal{}, unauthenticated("auth.authenticate", err)
	}
	return claims.Principal(), nil
}

func principalOf(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func unauthenticated(op string, err error) *domain.Error {
	return &domain.Error{Kind: domain.KindUnauthenticated, Op: op, Message: err.Error(), Err: err}
}
