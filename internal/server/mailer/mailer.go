// Package mailer delivers transactional email (verification and password
// reset links). The SMTP implementation speaks plain SMTP to a relay; the
// log implementation is used in development, where messages land in the log
// instead of a mailbox.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aquidolado/aqui/internal/logging"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// SMTPMailer sends mail through an SMTP relay address ("host:port").
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(addr string, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes outgoing messages to the logger instead of sending them.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to string, subject string, body string) error {
	m.logger.Info(ctx, "outgoing mail", "to", to, "subject", subject, "body", body)
	return nil
}
