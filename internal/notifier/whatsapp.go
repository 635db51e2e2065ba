package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const whatsAppGraphURL = "https://graph.facebook.com/v18.0/%s/messages"

var phoneCleanup = regexp.MustCompile(`[\s\-\(\)]`)

// WhatsAppGateway sends messages through the WhatsApp Business Cloud API
type WhatsAppGateway struct {
	httpClient *http.Client
}

// NewWhatsAppGateway creates the WhatsApp gateway. Credentials are supplied
// per call because they live in the reminder settings.
func NewWhatsAppGateway() *WhatsAppGateway {
	return &WhatsAppGateway{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

func (g *WhatsAppGateway) SendWhatsApp(ctx context.Context, to, message, apiKey, fromNumber string) error {
	if apiKey == "" {
		return fmt.Errorf("whatsapp API key not configured")
	}

	payload := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               phoneCleanup.ReplaceAllString(to, ""),
		Type:             "text",
		Text:             whatsAppText{Body: message},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	apiURL := fmt.Sprintf(whatsAppGraphURL, fromNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp error %s: %s", resp.Status, string(respBody))
	}

	return nil
}
