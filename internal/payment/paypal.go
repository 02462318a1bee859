// Package payment integrates PayPal Checkout for the premium tier.
// It creates CAPTURE-intent orders and captures them once the buyer has
// approved the payment on PayPal's site.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PayPal REST base URLs.
const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"
)

var (
	// ErrCredentialsMissing is returned when the client ID or secret is empty.
	ErrCredentialsMissing = errors.New("payment: PayPal credentials not set")
	// ErrInvalidAmount is returned for non-positive order amounts.
	ErrInvalidAmount = errors.New("payment: amount must be positive")
)

// APIError is a non-success response from the PayPal API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal %s failed (HTTP %d): %s", e.Op, e.StatusCode, e.Body)
}

// Order is a created checkout order.
type Order struct {
	ID           string          `json:"order_id"`
	Status       string          `json:"status"`
	ApprovalLink string          `json:"approval_link,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Capture is the result of capturing an approved order.
type Capture struct {
	ID     string          `json:"order_id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// Config holds PayPal credentials and environment.
type Config struct {
	ClientID string
	Secret   string
	Env      string // "sandbox" or "live"
	BaseURL  string // overrides Env when set
	Timeout  time.Duration
}

// Client is a PayPal REST client.
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a PayPal client. It returns ErrCredentialsMissing when
// either credential is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, ErrCredentialsMissing
	}
	base := cfg.BaseURL
	if base == "" {
		base = BaseURLFor(cfg.Env)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURLFor maps an environment name to its API base URL. Anything other
// than "live" is sandbox.
func BaseURLFor(env string) string {
	if strings.EqualFold(env, "live") {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

// BaseURL returns the API base URL in use.
func (c *Client) BaseURL() string { return c.baseURL }

// AccessToken obtains an OAuth2 token with the client-credentials grant.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "token", http.StatusOK)
	if err != nil {
		return "", err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &APIError{Op: "token", StatusCode: http.StatusOK, Body: "empty access_token"}
	}
	return tok.AccessToken, nil
}

// CreateOrder creates a CAPTURE-intent order for amount in currency and
// returns the order id with the buyer approval link.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*Order, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "USD"
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": strings.ToUpper(currency),
				"value":         amount.StringFixed(2),
			},
		}},
	}
	body, err := c.authorizedPost(ctx, "/v2/checkout/orders", payload, "create order")
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse create order response: %w", err)
	}

	order := &Order{ID: resp.ID, Status: resp.Status, Raw: body}
	for _, l := range resp.Links {
		if l.Rel == "approve" {
			order.ApprovalLink = l.Href
			break
		}
	}
	return order, nil
}

// CaptureOrder captures the funds of an approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	if orderID == "" {
		return nil, errors.New("payment: empty order id")
	}
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	body, err := c.authorizedPost(ctx, path, map[string]any{}, "capture order")
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse capture response: %w", err)
	}
	return &Capture{ID: resp.ID, Status: resp.Status, Raw: body}, nil
}

func (c *Client) authorizedPost(ctx context.Context, path string, payload any, op string) ([]byte, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op, http.StatusOK, http.StatusCreated)
}

func (c *Client) do(req *http.Request, op string, accept ...int) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	for _, code := range accept {
		if resp.StatusCode == code {
			return body, nil
		}
	}
	if len(body) > 1024 {
		body = body[:1024]
	}
	return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}
