package dto

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/payment"
)

// CreateInvoiceRequest starts a payment for a tier period
type CreateInvoiceRequest struct {
	Tier     string `json:"tier" validate:"required,oneof=BASIC PREMIUM VIP"`
	Provider string `json:"provider" validate:"required,oneof=stripe manual"`
}

// PaymentDTO represents a payment in API responses
type PaymentDTO struct {
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

// ToPaymentDTO converts a domain payment to its API representation
func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		Provider:    p.Provider,
		CheckoutURL: p.CheckoutURL,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		PaidAt:      p.PaidAt,
	}
}

// WebhookEvent is the minimal shape read from provider webhook payloads
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}
