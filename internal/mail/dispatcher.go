package mail

import (
	"context"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
)

// Recipient is a person an email is addressed to.
type Recipient struct {
	Name  string
	Email string
}

// RecipientOf returns the recipient for a user summary.
func RecipientOf(u *domain.UserSummary) Recipient {
	return Recipient{Name: u.Name, Email: u.Email}
}

// Assignment is the data of an assignment email.
type Assignment struct {
	To         Recipient
	Task       *domain.Task
	AssignedBy string
	Reassigned bool
}

// StatusUpdate is the data of a status update email.
type StatusUpdate struct {
	To        Recipient
	Task      *domain.Task
	ChangedBy string
}

// DeadlineReminder is the data of a deadline reminder email.
type DeadlineReminder struct {
	To   Recipient
	Task *domain.Task
	Now  time.Time
}

// Broadcast is an admin-authored message.
type Broadcast struct {
	To      Recipient
	Subject string
	Message string
	SentBy  string
	TaskID  *uuid.UUID
}

// Dispatcher renders emails and hands them to a Sender.
type Dispatcher struct {
	sender  Sender
	from    *netmail.Address
	baseURL string
	render  *renderer
	now     func() time.Time
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher that sends from the given address and
// links to tasks under baseURL.
func NewDispatcher(sender Sender, from, baseURL string, logger *slog.Logger) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}
	addr, err := netmail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if addr.Name == "" {
		addr.Name = "TaskDesk"
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:  sender,
		from:    addr,
		baseURL: strings.TrimRight(baseURL, "/"),
		render:  r,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "mail_dispatcher")),
	}, nil
}

// SendAssignment tells a user that a task was assigned to them.
func (d *Dispatcher) SendAssignment(ctx context.Context, a Assignment) error {
	heading := "New Task Assigned"
	if a.Reassigned {
		heading = "Task Reassigned"
	}
	v := view{
		RecipientName:   a.To.Name,
		ActorName:       a.AssignedBy,
		Heading:         heading,
		Accent:          "#667eea",
		Link:            d.taskLink(&a.Task.ID),
		LinkLabel:       "View Task",
		TaskTitle:       a.Task.Title,
		TaskDescription: a.Task.Description,
		BadgeLabel:      Label(string(a.Task.Priority)),
		BadgeColor:      priorityColor(a.Task.Priority),
		DueDate:         formatDate(a.Task.DueDate),
		Reassigned:      a.Reassigned,
	}
	return d.send(ctx, templateAssignment, a.To, "New Task Assigned: "+a.Task.Title, v)
}

// SendStatusUpdate tells a user that a task changed status.
func (d *Dispatcher) SendStatusUpdate(ctx context.Context, u StatusUpdate) error {
	v := view{
		RecipientName: u.To.Name,
		ActorName:     u.ChangedBy,
		Heading:       "Task Status Updated",
		Accent:        "#28a745",
		Link:          d.taskLink(&u.Task.ID),
		LinkLabel:     "View Task Details",
		TaskTitle:     u.Task.Title,
		BadgeLabel:    Label(string(u.Task.Status)),
		BadgeColor:    statusColor(u.Task.Status),
		CompletedAt:   formatDateTime(u.Task.CompletedAt),
	}
	return d.send(ctx, templateStatusUpdate, u.To, "Task Updated: "+u.Task.Title, v)
}

// SendDeadlineReminder reminds a user that a task is due soon.
func (d *Dispatcher) SendDeadlineReminder(ctx context.Context, r DeadlineReminder) error {
	if r.Task.DueDate == nil {
		return fmt.Errorf("task %s has no due date", r.Task.ID)
	}
	now := r.Now
	if now.IsZero() {
		now = d.now()
	}
	days := DaysUntil(now, *r.Task.DueDate)
	badge, color := fmt.Sprintf("%d days remaining", days), "#ffc107"
	switch days {
	case 0:
		badge, color = "Due today!", "#dc3545"
	case 1:
		badge = "1 day remaining"
	}
	v := view{
		RecipientName: r.To.Name,
		Heading:       "Task Deadline Reminder",
		Accent:        "#fd7e14",
		Link:          d.taskLink(&r.Task.ID),
		LinkLabel:     "Update Task Status",
		TaskTitle:     r.Task.Title,
		BadgeLabel:    badge,
		BadgeColor:    color,
		DueDate:       formatDate(r.Task.DueDate),
		DueIn:         dueIn(days),
	}
	subject := fmt.Sprintf("Reminder: Task %q %s", r.Task.Title, dueIn(days))
	return d.send(ctx, templateDeadlineReminder, r.To, subject, v)
}

// SendBroadcast delivers an admin-authored message to one recipient.
func (d *Dispatcher) SendBroadcast(ctx context.Context, b Broadcast) error {
	v := view{
		RecipientName: b.To.Name,
		ActorName:     b.SentBy,
		Heading:       b.Subject,
		Accent:        "#667eea",
		Link:          d.taskLink(b.TaskID),
		LinkLabel:     "View Task",
		Paragraphs:    paragraphs(b.Message),
	}
	return d.send(ctx, templateBroadcast, b.To, b.Subject, v)
}

func (d *Dispatcher) send(ctx context.Context, tmpl string, to Recipient, subject string, v view) error {
	if to.Email == "" {
		return fmt.Errorf("recipient %q has no email address", to.Name)
	}
	text, html, err := d.render.render(tmpl, v)
	if err != nil {
		return err
	}
	msg := &Message{
		From:    d.from,
		To:      []*netmail.Address{{Name: to.Name, Address: to.Email}},
		Subject: subject,
		Text:    text,
		HTML:    html,
		Date:    d.now(),
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Warn("email delivery failed",
			slog.String("template", tmpl),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send %s email: %w", tmpl, err)
	}
	return nil
}

func (d *Dispatcher) taskLink(id *uuid.UUID) string {
	if id == nil || d.baseURL == "" {
		return ""
	}
	return d.baseURL + "/tasks/" + id.String()
}
