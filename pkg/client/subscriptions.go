package client

import (
	"context"
	"time"
)

// SubscriptionService handles subscription operations
type SubscriptionService struct {
	client *Client
}

// Subscription represents a subscription
type Subscription struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	AutoRenew   bool       `json:"autoRenew"`
	PendingTier string     `json:"pendingTier,omitempty"`
}

// Plan describes one purchasable tier
type Plan struct {
	Tier              string `json:"tier"`
	MonthlyPriceCents int64  `json:"monthlyPriceCents"`
	RequestsPerMinute int    `json:"requestsPerMinute"`
}

// Plans lists every tier with its price and rate limit
func (s *SubscriptionService) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.client.doRequest(ctx, "GET", "/api/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Current returns the caller's subscription
func (s *SubscriptionService) Current(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := s.client.doRequest(ctx, "GET", "/api/subscriptions/current", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upgrade switches to a higher tier immediately
func (s *SubscriptionService) Upgrade(ctx context.Context, tier string) (*Subscription, error) {
	req := map[string]string{"tier": tier}
	var sub Subscription
	if err := s.client.doRequest(ctx, "POST", "/api/subscriptions/upgrade", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Downgrade schedules a lower tier for period end
func (s *SubscriptionService) Downgrade(ctx context.Context, tier string) (*Subscription, error) {
	req := map[string]string{"tier": tier}
	var sub Subscription
	if err := s.client.doRequest(ctx, "POST", "/api/subscriptions/downgrade", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel turns off auto-renewal
func (s *SubscriptionService) Cancel(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := s.client.doRequest(ctx, "POST", "/api/subscriptions/cancel", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
