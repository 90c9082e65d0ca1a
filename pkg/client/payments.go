package client

import (
	"context"
	"fmt"
	"time"
)

// PaymentService handles payment operations
type PaymentService struct {
	client *Client
}

// Payment represents a payment
type Payment struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Provider    string     `json:"provider"`
	CheckoutURL string     `json:"checkoutUrl,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

// CreateInvoiceRequest starts a payment for a tier period
type CreateInvoiceRequest struct {
	Tier     string `json:"tier"`
	Provider string `json:"provider"`
}

// PaymentPage is one page of the payment list
type PaymentPage struct {
	Data       []Payment `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int64     `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}

// CreateInvoice creates a pending payment and, for stripe, a checkout URL
func (s *PaymentService) CreateInvoice(ctx context.Context, tier, provider string) (*Payment, error) {
	req := CreateInvoiceRequest{Tier: tier, Provider: provider}
	var p Payment
	if err := s.client.doRequest(ctx, "POST", "/api/payments", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves one payment
func (s *PaymentService) Get(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	if err := s.client.doRequest(ctx, "GET", "/api/payments/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves the caller's payments
func (s *PaymentService) List(ctx context.Context, page, pageSize int) (*PaymentPage, error) {
	path := fmt.Sprintf("/api/payments?page=%d&page_size=%d", page, pageSize)
	var result PaymentPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
