package payment

import "time"

// Payment represents a single invoice/charge for a subscription period
type Payment struct {
	ID             string     `json:"id"`
	UserID         int64      `json:"user_id"`
	SubscriptionID int64      `json:"subscription_id"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	Provider       string     `json:"provider"`
	ExternalID     string     `json:"external_id,omitempty"`
	CheckoutURL    string     `json:"checkout_url,omitempty"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// Payment status lifecycle: pending -> completed|failed, completed -> refunded.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// Providers
const (
	ProviderStripe = "stripe"
	ProviderManual = "manual"
)

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	default:
		return false
	}
}

// Filter contains payment filtering options
type Filter struct {
	UserID   int64
	Status   string
	Provider string
	From     *time.Time
	To       *time.Time
}

// Stats is the aggregated payments view for the admin surface
type Stats struct {
	CountByStatus map[string]int64 `json:"count_by_status"`
	RevenueCents  int64            `json:"revenue_cents"`
	RefundedCents int64            `json:"refunded_cents"`
}
