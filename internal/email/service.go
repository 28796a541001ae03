// Package email sends transactional mail. The worker uses it to push
// notifications out to staff inboxes.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Service delivers mail.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether the config points at a real SMTP host.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type SMTPService struct {
	config SMTPConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

func NewSMTPService(config SMTPConfig, logger zerolog.Logger) *SMTPService {
	return &SMTPService{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// Send delivers the message. gomail dials per call, which is fine at
// notification volume; it cannot take a context, so cancellation is
// only honored before the dial starts.
func (s *SMTPService) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	s.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	return nil
}

// LogService drops mail into the log. Used in development and whenever
// SMTP is not configured, so the dispatcher never has to special-case
// a missing mailer.
type LogService struct {
	logger zerolog.Logger
}

func NewLogService(logger zerolog.Logger) *LogService {
	return &LogService{logger: logger.With().Str("component", "email").Logger()}
}

func (s *LogService) Send(_ context.Context, msg Message) error {
	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail suppressed, smtp not configured")
	return nil
}
