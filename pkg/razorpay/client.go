package razorpay

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client implements Gateway against the Razorpay REST API
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

// Config holds Razorpay API credentials
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// NewClient creates a new Razorpay API client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		keyID:     config.KeyID,
		keySecret: config.KeySecret,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// createOrderRequest is the POST /v1/orders payload
type createOrderRequest struct {
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// apiError is the error envelope Razorpay returns on non-2xx responses
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates a gateway order via POST /v1/orders with basic auth
func (c *Client) CreateOrder(amountPaise int64, currency, receipt string) (*Order, error) {
	if amountPaise <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amountPaise)
	}

	payload, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway rejected order (status %d): %s", resp.StatusCode, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway rejected order (status %d)", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned order without ID")
	}

	return &order, nil
}

// VerifyPaymentSignature recomputes HMAC-SHA256 over "order_id|payment_id"
// with the key secret and compares it to the submitted signature in
// constant time
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GetName returns the gateway implementation name
func (c *Client) GetName() string {
	return "razorpay"
}
