package subscription

import "context"

// Service defines the interface for subscription business logic
type Service interface {
	// GetForUser retrieves the user's current subscription, creating the
	// implicit FREE one if none exists
	GetForUser(ctx context.Context, userID int64) (*Subscription, error)

	// StartPending creates a pending subscription for a paid tier
	StartPending(ctx context.Context, userID int64, tier Tier) (*Subscription, error)

	// Activate activates a pending subscription and promotes the user
	Activate(ctx context.Context, id int64) (*Subscription, error)

	// Extend adds a period to an active or expired subscription
	Extend(ctx context.Context, id int64) (*Subscription, error)

	// Upgrade switches to a higher tier immediately with proration
	Upgrade(ctx context.Context, userID int64, to Tier) (*Subscription, error)

	// Downgrade schedules a lower tier for period end
	Downgrade(ctx context.Context, userID int64, to Tier) (*Subscription, error)

	// Cancel turns off auto-renewal for the user's active subscription
	Cancel(ctx context.Context, userID int64) (*Subscription, error)

	// ExpireDue sweeps active subscriptions past expiry; returns how many
	// rows were finalized
	ExpireDue(ctx context.Context) (int, error)

	// List retrieves subscriptions for the admin surface
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Subscription, int64, error)

	// MRR returns monthly recurring revenue in cents over active
	// subscriptions
	MRR(ctx context.Context) (int64, error)
}
