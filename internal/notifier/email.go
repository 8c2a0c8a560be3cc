package notifier

import (
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends alerts to a recipient list over SMTP.
type EmailNotifier struct {
	dialer     *gomail.Dialer
	from       string
	recipients []string
	subject    string
	maxRetries uint64
}

// NewEmailNotifier creates an SMTP notifier. The username doubles as the
// From address.
func NewEmailNotifier(host string, port int, username, password string, recipients []string, subject string) *EmailNotifier {
	return &EmailNotifier{
		dialer:     gomail.NewDialer(host, port, username, password),
		from:       username,
		recipients: recipients,
		subject:    subject,
		maxRetries: 2,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// Notify sends the text as a plain-text mail to all recipients, retrying
// transient SMTP failures with exponential backoff.
func (e *EmailNotifier) Notify(text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.recipients...)
	m.SetHeader("Subject", e.subject)
	m.SetBody("text/plain", text)

	op := func() error { return e.dialer.DialAndSend(m) }
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
