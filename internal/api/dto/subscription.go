package dto

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
)

// SubscriptionDTO represents a subscription in API responses
type SubscriptionDTO struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	AutoRenew   bool       `json:"autoRenew"`
	PendingTier string     `json:"pendingTier,omitempty"`
}

// ToSubscriptionDTO converts a domain subscription to its API representation
func ToSubscriptionDTO(s *subscription.Subscription) *SubscriptionDTO {
	return &SubscriptionDTO{
		ID:          s.ID,
		UserID:      s.UserID,
		Tier:        string(s.Tier),
		Status:      s.Status,
		StartedAt:   s.StartedAt,
		ExpiresAt:   s.ExpiresAt,
		AutoRenew:   s.AutoRenew,
		PendingTier: string(s.PendingTier),
	}
}

// ChangeTierRequest asks for an upgrade or downgrade
type ChangeTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=FREE BASIC PREMIUM VIP"`
}

// PlanDTO describes one purchasable tier
type PlanDTO struct {
	Tier              string `json:"tier"`
	MonthlyPriceCents int64  `json:"monthlyPriceCents"`
	RequestsPerMinute int    `json:"requestsPerMinute"`
}

// Plans lists every tier with its price and rate limit
func Plans() []PlanDTO {
	tiers := subscription.AllTiers()
	plans := make([]PlanDTO, 0, len(tiers))
	for _, t := range tiers {
		plans = append(plans, PlanDTO{
			Tier:              string(t),
			MonthlyPriceCents: t.MonthlyPriceCents(),
			RequestsPerMinute: t.RequestsPerMinute(),
		})
	}
	return plans
}
