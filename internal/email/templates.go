package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const (
	TemplateOTP          = "otp"
	TemplateNotification = "notification"
)

const otpTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 480px; margin: 0 auto; padding: 24px;">
    <h2 style="color: #7c2d12;">{{.FromName}}</h2>
    <p>Your verification code is:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    <p>This code expires in {{.TTLMinutes}} minutes. Do not share it with anyone.</p>
    <p style="font-size: 12px; color: #6b7280;">If you did not request this code you can ignore this email.</p>
  </div>
</body>
</html>`

const notificationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 480px; margin: 0 auto; padding: 24px;">
    <h2>{{.Subject}}</h2>
    <p>Dear {{.Name}},</p>
    <p>{{.Content}}</p>
    <p>{{.FromName}}</p>
  </div>
</body>
</html>`

// TemplateManager keeps parsed HTML templates by name.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the built-in templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	template.Must(tm.parse(TemplateOTP, otpTemplate))
	template.Must(tm.parse(TemplateNotification, notificationTemplate))
	return tm
}

func (tm *TemplateManager) parse(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return tpl, nil
}

func (tm *TemplateManager) AddTemplate(name string, text string) error {
	_, err := tm.parse(name, text)
	return err
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
