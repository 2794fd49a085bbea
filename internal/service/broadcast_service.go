package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/mail"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/policy"
	"github.com/phrazzld/taskdesk/internal/store"
)

// Broadcast limits.
const (
	MaxBroadcastRecipients    = 100
	MaxSubjectLength          = 200
	notificationPreviewLength = 200
)

// BroadcastInput is an admin-authored email to a set of users.
type BroadcastInput struct {
	Recipients []uuid.UUID
	Subject    string
	Message    string
	TaskID     *uuid.UUID
}

// Delivery is the per-recipient result of a broadcast.
type Delivery struct {
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email,omitempty"`
	EmailSent        bool      `json:"email_sent"`
	NotificationSent bool      `json:"notification_sent"`
	Error            string    `json:"error,omitempty"`
}

// BroadcastResult lists one delivery per requested recipient.
type BroadcastResult struct {
	Deliveries []Delivery
	Outcome    Outcome
}

// BroadcastService sends admin emails to users.
type BroadcastService struct {
	users store.UserStore
	tasks store.TaskStore
	fx    *effects
	now   func() time.Time
	log   *slog.Logger
}

// NewBroadcastService creates a BroadcastService.
func NewBroadcastService(
	users store.UserStore,
	tasks store.TaskStore,
	notifications store.NotificationStore,
	mailer Mailer,
	logger *slog.Logger,
) (*BroadcastService, error) {
	if users == nil || tasks == nil || notifications == nil || mailer == nil {
		return nil, fmt.Errorf("broadcast service requires user, task and notification stores and a mailer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "broadcast_service"))
	return &BroadcastService{
		users: users,
		tasks: tasks,
		fx:    &effects{notifications: notifications, mailer: mailer, logger: log},
		now:   time.Now,
		log:   log,
	}, nil
}

// Send emails every resolvable recipient. When the input references a task,
// each recipient also gets an EMAIL notification linked to it. Unknown
// recipients are reported in the result rather than failing the call.
func (s *BroadcastService) Send(ctx context.Context, p domain.Principal, in BroadcastInput) (*BroadcastResult, error) {
	const op = "email.broadcast"
	if !policy.CanManage(p) {
		return nil, domain.Forbidden(op, "only admins can send emails")
	}

	recipients := dedupe(in.Recipients)
	switch {
	case len(recipients) == 0:
		return nil, domain.NewValidationError("recipients", "must not be empty")
	case len(recipients) > MaxBroadcastRecipients:
		return nil, domain.NewValidationError("recipients", fmt.Sprintf("must not exceed %d users", MaxBroadcastRecipients))
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}
	if utf8.RuneCountInString(subject) > MaxSubjectLength {
		return nil, domain.NewValidationError("subject", "is too long")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, domain.NewValidationError("message", "is required")
	}
	if in.TaskID != nil {
		if _, err := s.tasks.GetByID(ctx, *in.TaskID); err != nil {
			return nil, fromStore(op, err)
		}
	}

	users, err := s.users.ListByIDs(ctx, recipients)
	if err != nil {
		return nil, fromStore(op, err)
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	res := &BroadcastResult{Deliveries: make([]Delivery, 0, len(recipients))}
	for _, id := range recipients {
		u, ok := byID[id]
		if !ok {
			res.Deliveries = append(res.Deliveries, Delivery{UserID: id, Error: "user not found"})
			continue
		}
		res.Deliveries = append(res.Deliveries, s.deliver(ctx, &res.Outcome, p, u, subject, message, in.TaskID))
	}

	logger.FromContextOrDefault(ctx, s.log).Info("broadcast sent",
		slog.Int("recipients", len(recipients)),
		slog.Int("failures", len(res.Outcome.Errors())))
	return res, nil
}

func (s *BroadcastService) deliver(
	ctx context.Context,
	out *Outcome,
	p domain.Principal,
	u *domain.User,
	subject, message string,
	taskID *uuid.UUID,
) Delivery {
	d := Delivery{UserID: u.ID, Email: u.Email}
	var one Outcome

	s.fx.email(ctx, &one, "broadcast", u.ID, func() error {
		return s.fx.mailer.SendBroadcast(ctx, mail.Broadcast{
			To:      mail.RecipientOf(u.Summary()),
			Subject: subject,
			Message: message,
			SentBy:  p.Name,
			TaskID:  taskID,
		})
	})
	if taskID != nil {
		preview := domain.Truncate(message, notificationPreviewLength)
		if n := s.fx.newNotification(ctx, domain.NotificationEmail, u.ID, taskID, subject, preview, s.now()); n != nil {
			s.fx.notify(ctx, &one, n)
		}
	}

	d.EmailSent = one.EmailSent()
	d.NotificationSent = one.NotificationSent()
	if errs := one.Errors(); len(errs) > 0 {
		d.Error = "delivery failed"
	}
	out.Effects = append(out.Effects, one.Effects...)
	return d
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
