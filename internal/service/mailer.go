package service

import (
	"context"

	"github.com/phrazzld/taskdesk/internal/mail"
)

// Mailer sends the transactional emails triggered by task changes.
// *mail.Dispatcher implements it.
type Mailer interface {
	SendAssignment(ctx context.Context, a mail.Assignment) error
	SendStatusUpdate(ctx context.Context, u mail.StatusUpdate) error
	SendDeadlineReminder(ctx context.Context, r mail.DeadlineReminder) error
	SendBroadcast(ctx context.Context, b mail.Broadcast) error
}

var _ Mailer = (*mail.Dispatcher)(nil)
