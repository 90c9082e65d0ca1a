// Package client is the Go SDK for the TradePulse API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the TradePulse API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	token      string // JWT token for authenticated requests
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // API base URL (e.g., "https://api.tradepulse.app")
	APIKey     string        // Optional service API key
	Timeout    time.Duration // HTTP client timeout (default: 30s)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// NewClient creates a new TradePulse API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
	}
}

// SetToken sets the JWT token for authenticated requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetToken returns the current JWT token
func (c *Client) GetToken() string {
	return c.token
}

// envelope is the standard success wrapper every endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// doRequest performs an HTTP request and unwraps the response envelope
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error APIError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error.Message == "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		apiErr := errResp.Error
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if result != nil && len(respBody) > 0 {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, result); err != nil {
				return fmt.Errorf("failed to parse response data: %w", err)
			}
		}
	}

	return nil
}

// Subscriptions returns the subscription service
func (c *Client) Subscriptions() *SubscriptionService {
	return &SubscriptionService{client: c}
}

// Payments returns the payment service
func (c *Client) Payments() *PaymentService {
	return &PaymentService{client: c}
}

// Stats returns the statistics service
func (c *Client) Stats() *StatsService {
	return &StatsService{client: c}
}

// Trades returns the trade ingestion service
func (c *Client) Trades() *TradeService {
	return &TradeService{client: c}
}
