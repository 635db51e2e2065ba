package notifier

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/shgbook/shgbook-api/internal/config"
)

// ResendSender sends reminder emails through Resend
type ResendSender struct {
	client    *resend.Client
	fromEmail string
	apiKey    string
}

// NewResendSender creates the email gateway from config
func NewResendSender(cfg *config.Config) *ResendSender {
	return &ResendSender{
		client:    resend.NewClient(cfg.ResendAPIKey),
		fromEmail: cfg.FromEmail,
		apiKey:    cfg.ResendAPIKey,
	}
}

func (s *ResendSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.apiKey == "" || s.fromEmail == "" {
		return fmt.Errorf("resend email not configured")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}
