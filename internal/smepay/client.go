// Package smepay is a client for the SMEPay external-merchant API.
// Every call is single-shot: no retries, no token caching. A token
// obtained from Authenticate is only valid for the calls made within
// the same merchant operation.
package smepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProductionBaseURL = "https://apps.typof.com"
	SandboxBaseURL    = "https://apps.typof.in"
)

type Config struct {
	ClientID     string
	ClientSecret string
	Environment  string // "production" or "sandbox"
	Timeout      time.Duration
	BaseURL      string // overrides Environment when set, used by tests
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpc        *http.Client
}

func New(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		switch cfg.Environment {
		case "production":
			base = ProductionBaseURL
		case "sandbox", "development":
			base = SandboxBaseURL
		default:
			return nil, fmt.Errorf("unknown smepay environment: %s", cfg.Environment)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(base, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpc:        &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) ClientID() string { return c.clientID }

// APIError is a processor response that could not be used: a non-200
// status or a 200 body missing the field the call was made for. The raw
// body is kept so a failed call can be diagnosed without repeating it.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("smepay %s: http status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("smepay %s: http status %d", e.Endpoint, e.StatusCode)
}

type CustomerDetails struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type OrderRequest struct {
	OrderID     string
	Amount      string // fixed two-decimal string
	CallbackURL string
	Customer    CustomerDetails
}

// Validation is the outcome of a validate-order call. Status false with
// an HTTP 200 is a normal "not paid / rejected" answer, not an error.
type Validation struct {
	Status        bool            `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Raw           json.RawMessage `json:"-"`
}

func (v Validation) Paid() bool {
	return v.Status && v.PaymentStatus == "paid"
}

func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	raw, err := c.postJSON(ctx, "/api/external/auth", "", body, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &APIError{Endpoint: "/api/external/auth", StatusCode: http.StatusOK, Body: clip(raw)}
	}
	return resp.AccessToken, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (string, error) {
	body := map[string]any{
		"client_id":        c.clientID,
		"amount":           req.Amount,
		"order_id":         req.OrderID,
		"callback_url":     req.CallbackURL,
		"customer_details": req.Customer,
	}
	var resp struct {
		OrderSlug string `json:"order_slug"`
	}
	raw, err := c.postJSON(ctx, "/api/external/create-order", token, body, &resp)
	if err != nil {
		return "", err
	}
	if resp.OrderSlug == "" {
		return "", &APIError{Endpoint: "/api/external/create-order", StatusCode: http.StatusOK, Body: clip(raw)}
	}
	return resp.OrderSlug, nil
}

func (c *Client) ValidateOrder(ctx context.Context, token, amount, slug string) (Validation, error) {
	body := map[string]any{
		"client_id": c.clientID,
		"amount":    amount,
		"slug":      slug,
	}
	var resp Validation
	raw, err := c.postJSON(ctx, "/api/external/validate-order", token, body, &resp)
	if err != nil {
		return Validation{}, err
	}
	resp.Raw = json.RawMessage(raw)
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, token string, body any, out any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smepay %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("smepay %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: clip(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: clip(raw)}
	}
	return raw, nil
}

func clip(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 512 {
		return s[:512]
	}
	return s
}
