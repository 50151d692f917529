package email

import (
	"context"
	"fmt"

	"admissions_backend/internal/config"
	"admissions_backend/internal/logger"
)

// Mailer composes the service's transactional messages on top of a Provider.
type Mailer struct {
	provider  Provider
	templates TemplateRenderer
	fromName  string
}

func NewMailer(provider Provider, templates TemplateRenderer, fromName string) *Mailer {
	if templates == nil {
		templates = NewTemplateManager()
	}
	return &Mailer{provider: provider, templates: templates, fromName: fromName}
}

// NewProvider picks SMTP when credentials are present and the log-only provider otherwise.
func NewProvider(cfg config.EmailConfig) Provider {
	if !cfg.Configured() {
		logger.Warn("SMTP credentials not configured, emails will only be logged")
		return NewLogProvider(logger.GetLogger())
	}
	return NewSMTPProvider(cfg)
}

func (m *Mailer) Provider() Provider {
	return m.provider
}

func (m *Mailer) SendOTP(ctx context.Context, to, code string, ttlMinutes int) error {
	html, err := m.templates.Render(TemplateOTP, TemplateData{
		"Code":       code,
		"TTLMinutes": ttlMinutes,
		"FromName":   m.fromName,
	})
	if err != nil {
		return err
	}

	return m.provider.Send(ctx, &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Your %s verification code", m.fromName),
		Body:     fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, ttlMinutes),
		HTMLBody: html,
	})
}

func (m *Mailer) SendNotification(ctx context.Context, to, name, subject, content string) error {
	html, err := m.templates.Render(TemplateNotification, TemplateData{
		"Subject":  subject,
		"Name":     name,
		"Content":  content,
		"FromName": m.fromName,
	})
	if err != nil {
		return err
	}

	return m.provider.Send(ctx, &Email{
		To:       []string{to},
		Subject:  subject,
		Body:     content,
		HTMLBody: html,
	})
}
