// Package payment bridges to the Razorpay payment gateway. It creates
// gateway orders and verifies payment callback signatures; all trust in a
// completed payment rests on the gateway's HMAC signature scheme.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIURL is the production Razorpay REST endpoint
const DefaultAPIURL = "https://api.razorpay.com/v1"

// ErrNotConfigured is returned when gateway credentials are absent
var ErrNotConfigured = errors.New("razorpay credentials are not configured")

// GatewayError is a non-2xx response from the gateway
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("razorpay returned %d: %s", e.StatusCode, e.Message)
}

// NetworkError is a transport-level failure talking to the gateway
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("razorpay request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Order is the gateway's order handle
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// gatewayErrorBody is the error envelope Razorpay returns on failures
type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Config holds Razorpay gateway configuration
type Config struct {
	KeyID     string
	KeySecret string
	APIURL    string // optional, defaults to DefaultAPIURL
}

// Gateway is a Razorpay REST client
type Gateway struct {
	keyID     string
	keySecret string
	apiURL    string
	client    *http.Client
}

// NewGateway creates a new Razorpay gateway client
func NewGateway(cfg Config) *Gateway {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Gateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		apiURL:    apiURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether gateway credentials are present
func (g *Gateway) Configured() bool {
	return g.keyID != "" && g.keySecret != ""
}

// KeyID returns the public key id, which the client needs for checkout
func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateOrder creates a gateway order. Amount is in minor units (paise).
func (g *Gateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	if currency == "" {
		currency = "INR"
	}

	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := "order creation failed"
		var gwErr gatewayErrorBody
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			message = gwErr.Error.Description
		} else if resp.StatusCode == http.StatusUnauthorized {
			message = "authentication failed - check gateway credentials"
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: message}
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("invalid response from payment gateway: %w", err)
	}

	return &order, nil
}

// VerifySignature recomputes the HMAC-SHA256 over "orderID|paymentID" and
// compares it to the supplied signature in constant time. Any missing field
// or mismatch yields false.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	if g.keySecret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
