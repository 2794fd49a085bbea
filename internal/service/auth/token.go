package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// TokenService issues and verifies session tokens.
type TokenService interface {
	// GenerateToken creates a signed session token for p and returns it with
	// its expiry time.
	GenerateToken(ctx context.Context, p domain.Principal) (string, time.Time, error)

	// ValidateToken verifies tokenString and extracts its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of a session token.
type Claims struct {
	UserID    uuid.UUID
	Role      domain.Role
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Principal returns the caller identity carried by the claims.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Role: c.Role, Name: c.Name}
}
