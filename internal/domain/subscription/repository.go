package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// Create creates a new subscription
	Create(ctx context.Context, sub *Subscription) (int64, error)

	// GetByID retrieves a subscription by ID
	GetByID(ctx context.Context, id int64) (*Subscription, error)

	// GetCurrentByUserID retrieves the user's non-terminal (pending or
	// active) subscription
	GetCurrentByUserID(ctx context.Context, userID int64) (*Subscription, error)

	// Update persists a subscription's mutable fields
	Update(ctx context.Context, sub *Subscription) error

	// List retrieves subscriptions with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Subscription, int64, error)

	// ListDue retrieves active subscriptions whose expiry is at or before
	// the given time
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Subscription, error)

	// CountActiveByTier counts active subscriptions grouped by tier
	CountActiveByTier(ctx context.Context) (map[Tier]int64, error)
}
