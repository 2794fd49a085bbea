package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/policy"
	"github.com/phrazzld/taskdesk/internal/service/auth"
	"github.com/phrazzld/taskdesk/internal/store"
)

// NewUserInput describes an account to create.
type NewUserInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// UserService lists users and provisions accounts.
type UserService struct {
	users    store.UserStore
	db       *sql.DB
	password auth.PasswordHasher
	now      func() time.Time
	log      *slog.Logger
}

// NewUserService creates a UserService. When db is nil, account creation
// runs without a transaction.
func NewUserService(users store.UserStore, db *sql.DB, password auth.PasswordHasher, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if password == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		db:       db,
		password: password,
		now:      time.Now,
		log:      logger.With(slog.String("component", "user_service")),
	}, nil
}

// List returns users ordered by name, optionally restricted to a role.
func (s *UserService) List(ctx context.Context, p domain.Principal, role string) ([]*domain.User, error) {
	const op = "user.list"
	if !policy.CanManage(p) {
		return nil, domain.Forbidden(op, "only admins can list users")
	}
	var filter *domain.Role
	if role != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filter = &r
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fromStore(op, err)
	}
	return users, nil
}

// CreateUser provisions a single account.
func (s *UserService) CreateUser(ctx context.Context, in NewUserInput) (*domain.User, error) {
	created, err := s.CreateUsers(ctx, []NewUserInput{in}, false)
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateUsers provisions accounts in one transaction: either all of them
// are created or none. With skipExisting, inputs whose email is already
// registered are left out of the result instead of failing the batch.
func (s *UserService) CreateUsers(ctx context.Context, inputs []NewUserInput, skipExisting bool) ([]*domain.User, error) {
	const op = "user.create"
	log := logger.FromContextOrDefault(ctx, s.log)

	pending := make([]*domain.User, 0, len(inputs))
	for _, in := range inputs {
		u, err := s.newUser(in)
		if err != nil {
			return nil, err
		}
		pending = append(pending, u)
	}

	var created []*domain.User
	err := s.inTx(ctx, func(ctx context.Context, users store.UserStore) error {
		created = created[:0]
		for _, u := range pending {
			err := users.Create(ctx, u)
			if errors.Is(err, store.ErrEmailExists) && skipExisting {
				log.Debug("user already exists", slog.String("email", u.Email))
				continue
			}
			if err != nil {
				return err
			}
			created = append(created, u)
		}
		return nil
	})
	if err != nil {
		return nil, fromStore(op, err)
	}

	for _, u := range created {
		log.Info("user created",
			slog.String("user_id", u.ID.String()),
			slog.String("role", string(u.Role)))
	}
	return created, nil
}

func (s *UserService) newUser(in NewUserInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.password.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal("user.create", err)
	}
	return domain.NewUser(in.Email, in.Name, role, hash, s.now())
}

func (s *UserService) inTx(ctx context.Context, fn func(ctx context.Context, users store.UserStore) error) error {
	if s.db == nil {
		return fn(ctx, s.users)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.users.WithTx(tx))
	})
}
