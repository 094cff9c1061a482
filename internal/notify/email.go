package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/hamed0406/uptimemonitor/internal/config"
)

// Email sends alerts over SMTP with STARTTLS. Constructed only when the
// e-mail channel is fully configured (server, credentials, recipients).
type Email struct {
	addr       string // host:port
	host       string
	username   string
	password   string
	recipients []string
}

func NewEmail(cfg config.AlertConfig) *Email {
	if !cfg.EmailEnabled() {
		return nil
	}
	return &Email{
		addr:       fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort),
		host:       cfg.SMTPServer,
		username:   cfg.SMTPUsername,
		password:   cfg.SMTPPassword,
		recipients: cfg.Recipients,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, subject, body string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", e.addr)
	if err != nil {
		return fmt.Errorf("dialing smtp server: %w", err)
	}
	// net/smtp has no context support past the dial; the connection
	// deadline bounds the rest of the conversation so a stalled server
	// cannot wedge the send.
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return fmt.Errorf("setting smtp deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, e.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := c.Mail(e.username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range e.recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.username, strings.Join(e.recipients, ", "), subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}
	return c.Quit()
}

var _ Notifier = (*Email)(nil)
