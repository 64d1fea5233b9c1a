// Package notify delivers OTP codes out-of-band. The reference channel
// is a WhatsApp gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppSender posts messages to a WhatsApp gateway. It implements
// services.OTPSender. The message body holds the plaintext code, so the
// sender never logs payloads.
type WhatsAppSender struct {
	hc      *http.Client
	baseURL string
	token   string
}

// NewWhatsAppSender creates a WhatsAppSender for the given gateway.
func NewWhatsAppSender(baseURL, token string) *WhatsAppSender {
	return &WhatsAppSender{
		hc:      &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

type sendRequest struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// Send delivers one message. Single-shot: retries, if any, belong to the
// gateway, not this client.
func (s *WhatsAppSender) Send(ctx context.Context, destination, message string) error {
	body, err := json.Marshal(sendRequest{Target: destination, Message: message})
	if err != nil {
		return fmt.Errorf("encoding whatsapp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.token)

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// NopSender discards messages. Used in development environments without a
// configured gateway.
type NopSender struct{}

// Send implements services.OTPSender.
func (NopSender) Send(context.Context, string, string) error { return nil }
