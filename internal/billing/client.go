// Package billing calls the external payment workflow endpoint that creates
// and verifies payment orders. Both calls are privileged: they carry the
// identity provider's bearer token and fail closed without one.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"copystudio/internal/domain"
)

const defaultTimeout = 20 * time.Second

// TokenSource supplies the bearer token for privileged calls. Implemented by
// the identity client.
type TokenSource interface {
	Token() (string, error)
}

// Options configures the workflow client.
type Options struct {
	BaseURL    string // workflow webhook base, e.g. https://flows.example.com/webhook
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the payment workflow endpoint.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	logger  zerolog.Logger
}

// Order is a created payment order.
type Order struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

// VerifyRequest carries the fields the workflow checks a payment against.
type VerifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyResult reports the outcome of payment verification. Verified is
// false when the workflow could not confirm the payment but the result was
// soft-accepted anyway.
type VerifyResult struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}

// NewClient validates options and builds a Client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("billing: base url is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("billing: token source is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, tokens: opts.Tokens, client: client, logger: opts.Logger}, nil
}

// CreateOrder asks the workflow to create a payment order for the plan.
func (c *Client) CreateOrder(ctx context.Context, planID string, amount int) (*Order, error) {
	var order Order
	if err := c.post(ctx, "/create-order", map[string]any{
		"planId": planID,
		"amount": amount,
	}, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, errors.New("billing: workflow returned no order id")
	}
	return &order, nil
}

// VerifyPayment submits the payment proof for verification. A verification
// failure is a soft success: the mismatch is logged and the caller still
// sees Success so the purchase flow is not blocked on the workflow.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	var result VerifyResult
	err := c.post(ctx, "/verify-payment", req, &result)
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("order_id", req.OrderID).Msg("payment verification failed, soft-accepting")
		return &VerifyResult{Success: true, Verified: false}, nil
	}
	if !result.Success {
		c.logger.Warn().Str("order_id", req.OrderID).Msg("payment verification mismatch, soft-accepting")
		return &VerifyResult{Success: true, Verified: false}, nil
	}
	result.Verified = true
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		// Fail closed before anything leaves the process.
		return fmt.Errorf("%w: no active session", domain.ErrAuthRequired)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("billing: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("billing: workflow unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("billing: workflow returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("billing: decode response: %w", err)
		}
	}
	return nil
}
