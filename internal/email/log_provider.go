package email

import (
	"context"
	"log/slog"
	"sync"
)

// LogProvider stands in for SMTP when no credentials are configured.
// It records what would have been sent and logs it.
type LogProvider struct {
	log *slog.Logger

	mu   sync.Mutex
	sent []Email
}

func NewLogProvider(log *slog.Logger) *LogProvider {
	if log == nil {
		log = slog.Default()
	}
	return &LogProvider{log: log}
}

func (p *LogProvider) Name() string {
	return "log"
}

func (p *LogProvider) Validate() error {
	return nil
}

func (p *LogProvider) Send(ctx context.Context, msg *Email) error {
	p.mu.Lock()
	p.sent = append(p.sent, *msg)
	p.mu.Unlock()

	p.log.InfoContext(ctx, "email delivery skipped, smtp not configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// Sent returns a copy of everything passed to Send.
func (p *LogProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}
