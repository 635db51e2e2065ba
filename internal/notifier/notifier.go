package notifier

import (
	"context"

	"github.com/shgbook/shgbook-api/internal/config"
)

// SMSSender delivers a plain-text message to a phone number
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// EmailSender delivers an HTML or plain-text email
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// WhatsAppSender delivers a message through the WhatsApp Business API.
// Credentials live in the reminder settings, not in process config, so they
// travel with each call.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, message, apiKey, fromNumber string) error
}

// PushSender delivers a push notification addressed by borrower id
type PushSender interface {
	SendPush(ctx context.Context, borrowerID uint, title, body string) error
}

// Gateways bundles one sender per channel
type Gateways struct {
	SMS      SMSSender
	Email    EmailSender
	WhatsApp WhatsAppSender
	Push     PushSender
}

// NewGateways wires the production senders from config
func NewGateways(cfg *config.Config) *Gateways {
	return &Gateways{
		SMS:      NewTwilioSender(cfg),
		Email:    NewResendSender(cfg),
		WhatsApp: NewWhatsAppGateway(),
		Push:     NewFCMSender(cfg),
	}
}
