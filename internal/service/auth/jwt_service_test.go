package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := newJWTService(testSecret, time.Hour, fixedClock(issued))
	require.NoError(t, err)

	p := domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin, Name: "Ada"}
	token, expires, err := svc.GenerateToken(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expires)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expires.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := newJWTService(testSecret, time.Hour, fixedClock(issued))
	require.NoError(t, err)
	p := domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember, Name: "Bob"}
	token, _, err := svc.GenerateToken(context.Background(), p)
	require.NoError(t, err)

	other, err := newJWTService("another-secret-that-is-long-enough-xx", time.Hour, fixedClock(issued))
	require.NoError(t, err)

	later, err := newJWTService(testSecret, time.Hour, fixedClock(issued.Add(3*time.Hour)))
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		UserID: uuid.New(),
		Role:   "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
	})
	badRoleToken, err := badRole.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{UserID: uuid.New(), Role: domain.RoleAdmin})
	noExpiryToken, err := noExpiry.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{"empty", svc, "", ErrMissingToken},
		{"malformed", svc, "not-a-jwt", ErrInvalidToken},
		{"wrong secret", other, token, ErrInvalidToken},
		{"expired", later, token, ErrExpiredToken},
		{"unknown role", svc, badRoleToken, ErrInvalidToken},
		{"missing expiry", svc, noExpiryToken, ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.ValidateToken(context.Background(), tc.token)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewJWTServiceValidatesConfig(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", SessionLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, SessionLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, SessionLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "wrong horse"))

	assert.Equal(t, 10, NewBcryptHasher(99).cost)
}
