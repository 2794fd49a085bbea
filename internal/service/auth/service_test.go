package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/mocks"
	"github.com/phrazzld/taskdesk/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*auth.Authenticator, *mocks.MockTokenService, *mocks.MockPasswordHasher, *domain.User) {
	t.Helper()
	users := mocks.NewMockUserStore()
	hasher := &mocks.MockPasswordHasher{}
	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	user, err := domain.NewUser("ada@example.com", "Ada", domain.RoleAdmin, hash, testNow)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	tokens := &mocks.MockTokenService{Token: "signed-token", ExpiresAt: testNow.Add(time.Hour)}
	return auth.NewAuthenticator(users, tokens, hasher, nil), tokens, hasher, user
}

func TestSignIn(t *testing.T) {
	a, tokens, _, user := setup(t)

	var issuedFor domain.Principal
	tokens.GenerateTokenFn = func(_ context.Context, p domain.Principal) (string, time.Time, error) {
		issuedFor = p
		return "signed-token", testNow.Add(time.Hour), nil
	}

	session, err := a.SignIn(context.Background(), "ADA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", session.Token)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, user.ID, issuedFor.UserID)
	assert.Equal(t, domain.RoleAdmin, issuedFor.Role)
	assert.Equal(t, "Ada", issuedFor.Name)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "nope"},
		{"unknown email", "nobody@example.com", "s3cret-pass"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, _, hasher, _ := setup(t)

			_, err := a.SignIn(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
			assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
			assert.Equal(t, "invalid email or password", domain.MessageOf(err))
			assert.Equal(t, 1, hasher.CompareCallCount, "both paths run one comparison")
		})
	}
}

func TestSignInTokenFailureIsInternal(t *testing.T) {
	a, tokens, _, _ := setup(t)
	tokens.Err = errors.New("signing failed")

	_, err := a.SignIn(context.Background(), "ada@example.com", "s3cret-pass")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	a, tokens, _, user := setup(t)
	tokens.Claims = &auth.Claims{UserID: user.ID, Role: user.Role, Name: user.Name}

	p, err := a.Authenticate(context.Background(), "signed-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.True(t, p.IsAdmin())

	tokens.ValidateErr = auth.ErrExpiredToken
	_, err = a.Authenticate(context.Background(), "signed-token")
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}
