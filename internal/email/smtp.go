package email

import (
	"fmt"

	"crosslist_backend/internal/config"

	"gopkg.in/gomail.v2"
)

const subjectSubscriptionEnded = "Your Pro subscription has ended"

const bodySubscriptionEnded = `Hi,

Your Pro subscription has ended and your account is back on the free plan.
The free plan includes up to 25 listings across your connected marketplaces.

You can resubscribe any time from the billing page.

The CrossList team`

// SMTPProvider delivers mail through a single SMTP account.
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

// NewProvider returns an SMTP-backed provider when the config carries SMTP
// settings and the noop provider otherwise.
func NewProvider(cfg config.EmailConfig) Provider {
	if cfg.SMTPHost == "" {
		return NewNoopProvider()
	}
	return &SMTPProvider{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromEmail,
	}
}

func (p *SMTPProvider) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (p *SMTPProvider) SendSubscriptionEnded(to string) error {
	return p.Send(to, subjectSubscriptionEnded, bodySubscriptionEnded)
}
