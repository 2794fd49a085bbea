package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/redact"
	"github.com/phrazzld/taskdesk/internal/store"
)

// EffectKind distinguishes the two channels a side effect can use.
type EffectKind string

// Side effect channels.
const (
	EffectNotification EffectKind = "notification"
	EffectEmail        EffectKind = "email"
)

// Effect records one attempted side effect.
type Effect struct {
	Kind      EffectKind
	Name      string // notification type or email template
	Recipient uuid.UUID
	Err       error
}

// Outcome records what a mutation did: whether the primary write happened
// and every side effect attempted after it.
type Outcome struct {
	TaskUpdated bool
	Effects     []Effect
}

// NotificationSent reports whether at least one notification was written.
func (o *Outcome) NotificationSent() bool {
	return o.sent(EffectNotification)
}

// EmailSent reports whether at least one email was handed to the mailer.
func (o *Outcome) EmailSent() bool {
	return o.sent(EffectEmail)
}

// Errors returns the failures of the side effects, in attempt order.
func (o *Outcome) Errors() []error {
	var errs []error
	for _, e := range o.Effects {
		if e.Err != nil {
			errs = append(errs, e.Err)
		}
	}
	return errs
}

// Failed returns the effects that did not succeed.
func (o *Outcome) Failed() []Effect {
	var out []Effect
	for _, e := range o.Effects {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

func (o *Outcome) sent(kind EffectKind) bool {
	for _, e := range o.Effects {
		if e.Kind == kind && e.Err == nil {
			return true
		}
	}
	return false
}

func (o *Outcome) record(kind EffectKind, name string, recipient uuid.UUID, err error) {
	o.Effects = append(o.Effects, Effect{Kind: kind, Name: name, Recipient: recipient, Err: err})
}

// effects performs best-effort notification writes and email sends.
type effects struct {
	notifications store.NotificationStore
	mailer        Mailer
	logger        *slog.Logger
}

// notify writes ns in a single insert and records one effect per recipient.
func (fx *effects) notify(ctx context.Context, out *Outcome, ns ...*domain.Notification) {
	if len(ns) == 0 {
		return
	}
	var err error
	if len(ns) == 1 {
		err = fx.notifications.Create(ctx, ns[0])
	} else {
		err = fx.notifications.CreateMany(ctx, ns)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, fx.logger).Warn("failed to write notification",
			slog.String("type", string(ns[0].Type)),
			slog.Int("count", len(ns)),
			slog.String("error", redact.Error(err)))
		err = fmt.Errorf("%s notification: %w", ns[0].Type, err)
	}
	for _, n := range ns {
		out.record(EffectNotification, string(n.Type), n.UserID, err)
	}
}

// email runs send and records the attempt.
func (fx *effects) email(ctx context.Context, out *Outcome, name string, recipient uuid.UUID, send func() error) {
	if fx.mailer == nil {
		return
	}
	err := send()
	if err != nil {
		logger.FromContextOrDefault(ctx, fx.logger).Warn("failed to send email",
			slog.String("email", name),
			slog.String("recipient_id", recipient.String()),
			slog.String("error", redact.Error(err)))
		err = fmt.Errorf("%s email: %w", name, err)
	}
	out.record(EffectEmail, name, recipient, err)
}

// newNotification builds a notification, logging and dropping invalid ones.
func (fx *effects) newNotification(
	ctx context.Context,
	typ domain.NotificationType,
	userID uuid.UUID,
	taskID *uuid.UUID,
	title, message string,
	now time.Time,
) *domain.Notification {
	n, err := domain.NewNotification(typ, userID, taskID, title, message, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, fx.logger).Error("invalid notification",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()))
		return nil
	}
	return n
}
