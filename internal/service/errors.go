package service

import (
	"errors"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
)

// fromStore converts a store failure into a domain error for op. Not-found
// and constraint errors keep their kind; anything else is internal.
func fromStore(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return domain.NotFound(op, "task not found", err)
	case errors.Is(err, store.ErrUserNotFound):
		return domain.NotFound(op, "user not found", err)
	case errors.Is(err, store.ErrNotificationNotFound):
		return domain.NotFound(op, "notification not found", err)
	case errors.Is(err, store.ErrEmailExists):
		return &domain.Error{Kind: domain.KindInvalidArgument, Op: op, Field: "email", Message: "is already registered", Err: err}
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		if de.Op != "" {
			return err
		}
		return &domain.Error{Kind: de.Kind, Op: op, Field: de.Field, Message: de.Message, Err: err}
	}
	return domain.Internal(op, err)
}
