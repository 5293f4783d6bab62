// Package mail provides best-effort outbound email. Delivery failures are
// logged and never affect the ticket state change that triggered them.
package mail

import (
	"context"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/quickdesk/helpdesk/internal/config"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// Message is a plain-text email ready to send.
type Message struct {
	Subject    string
	Recipients []string
	Body       string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay via gomail.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer builds the mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers the message, wrapping transport failures as DeliveryError.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	gm.SetHeader("To", msg.Recipients...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return apperrors.NewDeliveryError(err)
	}
	return nil
}

// NoopMailer logs instead of sending; used when SMTP is not configured.
type NoopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer builds the no-op mailer.
func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// Send logs the would-be delivery.
func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Debug("smtp not configured; dropping email",
		zap.String("subject", msg.Subject),
		zap.Strings("recipients", msg.Recipients))
	return nil
}

// FromConfig picks the SMTP mailer when a host is configured, the no-op
// mailer otherwise.
func FromConfig(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewNoopMailer(logger)
	}
	return NewSMTPMailer(cfg)
}
