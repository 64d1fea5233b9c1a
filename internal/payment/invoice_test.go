package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateInvoice(t *testing.T) {
	var gotPath, gotAuthUser string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, _, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "inv-123",
			"invoice_url": "https://pay.example.com/inv-123",
			"status":      "PENDING",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-xyz")
	id, url, err := c.CreateInvoice(context.Background(), "order-1", 15000, "alice@example.com", "Top-up order order-1")
	require.NoError(t, err)

	assert.Equal(t, "inv-123", id)
	assert.Equal(t, "https://pay.example.com/inv-123", url)
	assert.Equal(t, "/v2/invoices", gotPath)
	assert.Equal(t, "api-key-xyz", gotAuthUser)
	assert.Equal(t, "order-1", gotBody["external_id"])
	assert.Equal(t, float64(15000), gotBody["amount"])
}

func TestClient_CreateInvoice_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-xyz")
	_, _, err := c.CreateInvoice(context.Background(), "order-1", 15000, "alice@example.com", "desc")
	assert.Error(t, err)
}

func TestClient_CreateInvoice_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"PENDING"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-xyz")
	_, _, err := c.CreateInvoice(context.Background(), "order-1", 15000, "alice@example.com", "desc")
	assert.Error(t, err)
}
