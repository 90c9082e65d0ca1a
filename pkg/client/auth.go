package client

import (
	"context"
	"time"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	TelegramID int64  `json:"telegramId,omitempty"`
}

// AuthResponse represents a login or refresh response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// User represents a user in the system
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	TelegramID  int64     `json:"telegramId,omitempty"`
	Role        string    `json:"role"`
	Tier        string    `json:"tier"`
	Language    string    `json:"language"`
	FunnelStage string    `json:"funnelStage"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{Email: email, Password: password}

	var resp AuthResponse
	if err := c.doRequest(ctx, "POST", "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		c.SetToken(resp.AccessToken)
	}

	return &resp, nil
}

// Register creates a new user account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.doRequest(ctx, "POST", "/api/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentUser retrieves the currently authenticated user
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, "GET", "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges a refresh token for a new pair
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req := map[string]string{
		"refreshToken": refreshToken,
	}

	var resp AuthResponse
	if err := c.doRequest(ctx, "POST", "/api/auth/refresh", req, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		c.SetToken(resp.AccessToken)
	}

	return &resp, nil
}
