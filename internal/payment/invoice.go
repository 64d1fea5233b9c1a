// Package payment wraps the external invoice-based payment collector.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client creates collection invoices with the payment provider. It is a
// thin single-shot HTTP client; the provider reports payment results back
// through the webhook endpoint, not through this client.
type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a payment Client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type createInvoiceRequest struct {
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	PayerEmail  string `json:"payer_email"`
	Description string `json:"description"`
}

type invoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
}

// CreateInvoice registers an invoice for the given order and returns the
// provider's invoice ID and hosted payment URL.
func (c *Client) CreateInvoice(ctx context.Context, externalID string, amount int64, payerEmail, description string) (string, string, error) {
	body, err := json.Marshal(createInvoiceRequest{
		ExternalID:  externalID,
		Amount:      amount,
		PayerEmail:  payerEmail,
		Description: description,
	})
	if err != nil {
		return "", "", fmt.Errorf("encoding invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("building invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("creating invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var inv invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return "", "", fmt.Errorf("decoding invoice response: %w", err)
	}
	if inv.ID == "" {
		return "", "", fmt.Errorf("payment provider returned an invoice without an id")
	}
	return inv.ID, inv.InvoiceURL, nil
}
