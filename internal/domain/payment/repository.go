package payment

import "context"

// Repository defines the interface for payment data access
type Repository interface {
	// Create creates a new payment
	Create(ctx context.Context, p *Payment) error

	// GetByID retrieves a payment by ID
	GetByID(ctx context.Context, id string) (*Payment, error)

	// GetByExternalID retrieves a payment by provider reference
	GetByExternalID(ctx context.Context, externalID string) (*Payment, error)

	// Update persists a payment's mutable fields
	Update(ctx context.Context, p *Payment) error

	// List retrieves payments with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Payment, int64, error)

	// Aggregate computes the payments stats view over a filter
	Aggregate(ctx context.Context, filter Filter) (*Stats, error)
}
