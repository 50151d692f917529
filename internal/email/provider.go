package email

import "context"

// Provider delivers a composed message.
type Provider interface {
	Send(ctx context.Context, msg *Email) error

	// Validate checks the provider configuration without sending anything.
	Validate() error

	// Name identifies the transport in logs.
	Name() string
}

type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
