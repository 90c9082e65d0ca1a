package payment

import (
	"context"

	"github.com/tradepulse/backend/internal/domain/subscription"
)

// Service defines the interface for payment business logic
type Service interface {
	// CreateInvoice creates a pending payment for a tier period. For the
	// stripe provider it also creates a checkout session and returns its
	// URL on the payment.
	CreateInvoice(ctx context.Context, userID int64, tier subscription.Tier, provider string) (*Payment, error)

	// Complete marks a payment completed and activates or extends the
	// linked subscription. Idempotent for already-completed payments.
	Complete(ctx context.Context, paymentID string) (*Payment, error)

	// Fail marks a pending payment failed
	Fail(ctx context.Context, paymentID string, reason string) error

	// Refund marks a completed payment refunded
	Refund(ctx context.Context, paymentID string) error

	// HandleProviderEvent resolves a provider webhook event to a payment
	// transition
	HandleProviderEvent(ctx context.Context, externalID, eventType string) error

	// GetByID retrieves a payment
	GetByID(ctx context.Context, id string) (*Payment, error)

	// List retrieves payments with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Payment, int64, error)

	// GetStats computes the payments stats view
	GetStats(ctx context.Context, filter Filter) (*Stats, error)
}
