// Package email delivers outgoing notification mail.
package email

import (
	"context"

	"salesdesk_backend/platform/config"
)

// Sender is the outgoing email interface consumed by the worker.
type Sender interface {
	SendFollowUpReminderEmail(ctx context.Context, toEmail string, data FollowUpReminder) error
}

// FollowUpReminder carries the details for a scheduled follow-up email.
type FollowUpReminder struct {
	AgentName    string
	ClientName   string
	ClientPhone  string
	FollowUpDate string
	CaseURL      string
}

// NoopSender discards all mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendFollowUpReminderEmail(ctx context.Context, toEmail string, data FollowUpReminder) error {
	return nil
}

// NewSender returns the configured Sender. Falls back to NoopSender when
// email is disabled or no SMTP host is set.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
