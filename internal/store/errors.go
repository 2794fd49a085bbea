package store

import (
	"fmt"

	"github.com/phrazzld/taskdesk/internal/domain"
)

// Base store errors. Backends translate driver errors into these so the
// service layer never inspects SQLSTATE codes or SQLite result codes.
var (
	ErrNotFound      error = &domain.Error{Kind: domain.KindNotFound, Message: "entity not found"}
	ErrDuplicate     error = &domain.Error{Kind: domain.KindInvalidArgument, Message: "entity already exists"}
	ErrInvalidEntity error = &domain.Error{Kind: domain.KindInvalidArgument, Message: "invalid entity"}
)

// Per-entity errors. Each wraps a base error, so errors.Is(err, ErrNotFound)
// holds for all three not-found variants.
var (
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrNotificationNotFound also covers a notification owned by someone else.
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)
