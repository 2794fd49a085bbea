package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// UserStore persists accounts. Emails compare case-insensitively everywhere.
type UserStore interface {
	// Create inserts user as given; PasswordHash must already be set.
	// A taken email yields ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List orders by name. A nil role lists everyone.
	List(ctx context.Context, role *domain.Role) ([]*domain.User, error)

	// ListByIDs silently drops ids with no matching row.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)

	Count(ctx context.Context, role *domain.Role) (int, error)

	WithTx(tx *sql.Tx) UserStore
}
