package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/config"
)

func TestMailerSendOTPRendersCode(t *testing.T) {
	provider := NewLogProvider(nil)
	m := NewMailer(provider, nil, "Vignan Admissions")

	require.NoError(t, m.SendOTP(context.Background(), "student@example.com", "123456", 10))

	sent := provider.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"student@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "123456")
	assert.Contains(t, sent[0].HTMLBody, "10 minutes")
	assert.Contains(t, sent[0].Subject, "Vignan Admissions")
}

func TestTemplateEscapesContent(t *testing.T) {
	tm := NewTemplateManager()
	out, err := tm.Render(TemplateNotification, TemplateData{"Content": "<script>x</script>", "Name": "A"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestNewProviderFallsBackToLog(t *testing.T) {
	p := NewProvider(config.EmailConfig{SMTPHost: "smtp.example.com"})
	assert.Equal(t, "log", p.Name())

	p = NewProvider(config.EmailConfig{
		SMTPHost: "smtp.example.com", SMTPPort: 465, SMTPUsername: "u", SMTPPassword: "p", FromEmail: "u@example.com",
	})
	assert.Equal(t, "smtp", p.Name())
	assert.NoError(t, p.Validate())
	assert.True(t, p.(*SMTPProvider).dialer.SSL)
}
