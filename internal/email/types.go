package email

// Email is a single outgoing message. HTMLBody wins over Body when both are set,
// and Body becomes the plain-text alternative.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type TemplateData map[string]interface{}
