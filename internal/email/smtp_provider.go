package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"admissions_backend/internal/config"
)

// SMTPProvider sends mail through gomail. Port 465 uses implicit TLS,
// any other port upgrades with STARTTLS when the server offers it.
type SMTPProvider struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPProvider(cfg config.EmailConfig) *SMTPProvider {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.SSL = cfg.SMTPPort == 465
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return &SMTPProvider{cfg: cfg, dialer: d}
}

func (p *SMTPProvider) Name() string {
	return "smtp"
}

func (p *SMTPProvider) Validate() error {
	if p.cfg.SMTPHost == "" {
		return errors.New("smtp host is required")
	}
	if p.cfg.SMTPPort <= 0 {
		return errors.New("smtp port is required")
	}
	if p.cfg.FromEmail == "" {
		return errors.New("from email is required")
	}
	return nil
}

func (p *SMTPProvider) compose(msg *Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.cfg.FromEmail, p.cfg.FromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.Body != "":
		m.SetBody("text/plain", msg.Body)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.Body)
	}

	return m
}

// Send dials per message. gomail has no context support, so the deadline is enforced around it.
func (p *SMTPProvider) Send(ctx context.Context, msg *Email) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	timeout := time.Duration(p.cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.dialer.DialAndSend(p.compose(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %v: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %v: %w", msg.To, ctx.Err())
	}
}
