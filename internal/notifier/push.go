package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shgbook/shgbook-api/internal/config"
)

const fcmSendURL = "https://fcm.googleapis.com/fcm/send"

// FCMSender sends push notifications to borrower-scoped topics via
// Firebase Cloud Messaging
type FCMSender struct {
	serverKey  string
	httpClient *http.Client
}

// NewFCMSender creates the push gateway from config
func NewFCMSender(cfg *config.Config) *FCMSender {
	return &FCMSender{
		serverKey:  cfg.FCMServerKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
}

func (s *FCMSender) SendPush(ctx context.Context, borrowerID uint, title, body string) error {
	if s.serverKey == "" {
		return fmt.Errorf("FCM server key not configured")
	}

	payload := fcmMessage{
		To:           fmt.Sprintf("/topics/borrower-%d", borrowerID),
		Notification: fcmNotification{Title: title, Body: body},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fcmSendURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "key="+s.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fcm error %s: %s", resp.Status, string(respBody))
	}

	return nil
}
