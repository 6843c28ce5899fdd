// Package smtp sends emails over plain SMTP, the transport used by the
// hosted mailbox the product runs with.
package smtp

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

// Settings contains the settings for the SMTP server.
type Settings struct {
	Host     string
	Port     string
	Username string
	Password krypto.Secret
	// FromName is the display name used in the From header.
	FromName string
}

// Sender is an email sender that delivers emails via an SMTP server.
type Sender struct {
	settings Settings
}

// NewSender creates a new sender.
func NewSender(s Settings) *Sender {
	return &Sender{
		settings: s,
	}
}

// Send sends an email via the configured SMTP server.
//
// The context is only checked before the SMTP conversation starts,
// net/smtp does not support cancellation mid-conversation.
func (s *Sender) Send(ctx context.Context, from, recipient email.Address, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.settings.Host, s.settings.Port)
	auth := smtp.PlainAuth("", s.settings.Username, string(s.settings.Password.SecretValue()), s.settings.Host)

	msg := s.message(from, recipient, subject, body)

	err := smtp.SendMail(addr, auth, string(from), []string{string(recipient)}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}

	return nil
}

func (s *Sender) message(from, recipient email.Address, subject, body string) []byte {
	fromHeader := string(from)
	if s.settings.FromName != "" {
		fromHeader = fmt.Sprintf("%q <%s>", s.settings.FromName, from)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	return []byte(b.String())
}
