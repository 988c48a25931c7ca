package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/cursova/cursova-api/pkg/config"
)

// Sender delivers transactional email. Implementations must be safe for
// concurrent use by queue workers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SMTPSender sends mail through a plain SMTP relay with STARTTLS.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPSender constructs the sender.
func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send delivers the message. When the sender is disabled the message is
// logged and dropped, which keeps development environments mail-free.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient required")
	}
	if !s.cfg.Enabled {
		s.logger.Sugar().Infow("smtp disabled, dropping mail", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, body.Bytes()); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
