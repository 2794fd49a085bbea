package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
)

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Connection security modes for SMTPSender.
const (
	SecurityNone     = "none"
	SecurityStartTLS = "starttls"
	SecurityTLS      = "tls"
)

// ErrUnsupportedSecurity is returned for an unknown connection security mode.
var ErrUnsupportedSecurity = errors.New("unsupported smtp security mode")

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	security string
	logger   *slog.Logger
}

// NewSMTPSender creates a sender for the relay described by cfg.
func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) (*SMTPSender, error) {
	switch cfg.Security {
	case SecurityNone, SecurityStartTLS, SecurityTLS:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSecurity, cfg.Security)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		security: cfg.Security,
		logger:   logger.With(slog.String("component", "smtp_sender")),
	}, nil
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	c, err := s.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer func() { _ = c.Close() }()

	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}
	if err := c.SendMail(msg.From.Address, msg.Recipients(), bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if err := c.Quit(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("smtp quit failed", slog.String("error", err.Error()))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("email sent",
		slog.String("subject", msg.Subject),
		slog.Int("recipients", len(msg.To)))
	return nil
}

func (s *SMTPSender) dial() (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	switch s.security {
	case SecurityTLS:
		return smtp.DialTLS(s.addr, tlsConfig)
	case SecurityStartTLS:
		return smtp.DialStartTLS(s.addr, tlsConfig)
	default:
		return smtp.Dial(s.addr)
	}
}

// LogSender records messages in the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_sender"))}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if _, err := msg.Bytes(); err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("email not delivered, log transport active",
		slog.String("subject", msg.Subject),
		slog.Any("to", msg.Recipients()))
	return nil
}

// NewSender builds the sender selected by cfg.Transport.
func NewSender(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Transport {
	case "smtp":
		return NewSMTPSender(cfg, logger)
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Transport)
	}
}
