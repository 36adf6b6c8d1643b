// Package email sends transactional notifications. The rest of the app only
// sees the Provider interface; installs without SMTP configured get the noop
// provider and every notification becomes a log line.
package email

import "crosslist_backend/internal/logger"

type Provider interface {
	Send(to, subject, body string) error

	// SendSubscriptionEnded notifies a user that their pro subscription has
	// ended and the account is back on the free plan.
	SendSubscriptionEnded(to string) error
}

type noopProvider struct{}

func NewNoopProvider() Provider {
	return &noopProvider{}
}

func (p *noopProvider) Send(to, subject, _ string) error {
	logger.Debug("email sending disabled, dropping message", "to", to, "subject", subject)
	return nil
}

func (p *noopProvider) SendSubscriptionEnded(to string) error {
	return p.Send(to, subjectSubscriptionEnded, "")
}
