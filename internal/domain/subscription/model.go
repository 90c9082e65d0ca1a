package subscription

import (
	"fmt"
	"time"
)

// Tier is a named subscription level gating request rate limits.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierBasic   Tier = "BASIC"
	TierPremium Tier = "PREMIUM"
	TierVIP     Tier = "VIP"
)

// tierRank gives the total order used for upgrade/downgrade checks.
var tierRank = map[Tier]int{
	TierFree:    0,
	TierBasic:   1,
	TierPremium: 2,
	TierVIP:     3,
}

// MonthlyPriceCents returns the monthly price of a tier in cents.
func (t Tier) MonthlyPriceCents() int64 {
	switch t {
	case TierBasic:
		return 990
	case TierPremium:
		return 2490
	case TierVIP:
		return 4990
	default:
		return 0
	}
}

// RequestsPerMinute returns the API rate limit granted by a tier.
func (t Tier) RequestsPerMinute() int {
	switch t {
	case TierBasic:
		return 30
	case TierPremium:
		return 120
	case TierVIP:
		return 600
	default:
		return 10
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Above reports whether t outranks other.
func (t Tier) Above(other Tier) bool {
	return tierRank[t] > tierRank[other]
}

// AllTiers lists tiers in ascending order.
func AllTiers() []Tier {
	return []Tier{TierFree, TierBasic, TierPremium, TierVIP}
}

// Subscription status
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusCanceled = "canceled"
)

// Period is the billing period granted by one payment.
const Period = 30 * 24 * time.Hour

// Subscription represents a user's paid plan and its lifecycle state.
type Subscription struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	Tier                 Tier       `json:"tier"`
	Status               string     `json:"status"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	AutoRenew            bool       `json:"auto_renew"`
	PendingTier          Tier       `json:"pending_tier,omitempty"`
	StripeSubscriptionID string     `json:"stripe_subscription_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ErrTransition signals a disallowed lifecycle transition.
type ErrTransition struct {
	From, To string
	Reason   string
}

func (e *ErrTransition) Error() string {
	return fmt.Sprintf("cannot move subscription from %s to %s: %s", e.From, e.To, e.Reason)
}

// Activate moves a pending subscription to active, starting a full period now.
func (s *Subscription) Activate(now time.Time) error {
	if s.Status != StatusPending {
		return &ErrTransition{From: s.Status, To: StatusActive, Reason: "only pending subscriptions can be activated"}
	}
	exp := now.Add(Period)
	s.Status = StatusActive
	s.StartedAt = &now
	s.ExpiresAt = &exp
	s.AutoRenew = true
	return nil
}

// Extend adds one period. An active subscription keeps its anchor date and
// gains a period on top of the current expiry; an expired one restarts from
// now and becomes active again. Canceled subscriptions are terminal.
func (s *Subscription) Extend(now time.Time) error {
	switch s.Status {
	case StatusActive:
		// The implicit FREE row is active with no expiry; there is no
		// billing period to stack onto.
		if s.Tier == TierFree || s.ExpiresAt == nil {
			return &ErrTransition{From: s.Status, To: StatusActive, Reason: "the free tier has no billing period to extend"}
		}
		exp := s.ExpiresAt.Add(Period)
		s.ExpiresAt = &exp
		return nil
	case StatusExpired:
		exp := now.Add(Period)
		s.Status = StatusActive
		s.StartedAt = &now
		s.ExpiresAt = &exp
		return nil
	default:
		return &ErrTransition{From: s.Status, To: StatusActive, Reason: "only active or expired subscriptions can be extended"}
	}
}

// Upgrade switches an active subscription to a higher tier immediately.
// Unused time on the old tier is converted to extra days on the new tier
// by price ratio, floored to whole days.
func (s *Subscription) Upgrade(to Tier, now time.Time) error {
	if s.Status != StatusActive {
		return &ErrTransition{From: s.Status, To: s.Status, Reason: "only active subscriptions can be upgraded"}
	}
	if s.Tier == TierFree {
		return &ErrTransition{From: s.Status, To: s.Status, Reason: "upgrading from the free tier requires a purchase"}
	}
	if !to.Valid() || !to.Above(s.Tier) {
		return &ErrTransition{From: s.Status, To: s.Status, Reason: fmt.Sprintf("%s is not an upgrade from %s", to, s.Tier)}
	}

	remaining := s.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	var creditDays int64
	if to.MonthlyPriceCents() > 0 && s.Tier.MonthlyPriceCents() > 0 {
		remainingDays := int64(remaining / (24 * time.Hour))
		creditDays = remainingDays * s.Tier.MonthlyPriceCents() / to.MonthlyPriceCents()
	}

	exp := now.Add(Period + time.Duration(creditDays)*24*time.Hour)
	s.Tier = to
	s.PendingTier = ""
	s.StartedAt = &now
	s.ExpiresAt = &exp
	return nil
}

// Downgrade records a lower tier to apply at period end. The current tier
// and expiry are untouched; the expiry sweep applies the pending tier.
func (s *Subscription) Downgrade(to Tier) error {
	if s.Status != StatusActive {
		return &ErrTransition{From: s.Status, To: s.Status, Reason: "only active subscriptions can be downgraded"}
	}
	if !to.Valid() || !s.Tier.Above(to) {
		return &ErrTransition{From: s.Status, To: s.Status, Reason: fmt.Sprintf("%s is not a downgrade from %s", to, s.Tier)}
	}
	s.PendingTier = to
	return nil
}

// Cancel turns off auto-renewal. The subscription stays active until its
// expiry, mirroring cancel-at-period-end provider semantics.
func (s *Subscription) Cancel() error {
	if s.Status != StatusActive {
		return &ErrTransition{From: s.Status, To: StatusCanceled, Reason: "only active subscriptions can be canceled"}
	}
	if s.Tier == TierFree {
		return &ErrTransition{From: s.Status, To: StatusCanceled, Reason: "the free tier has nothing to cancel"}
	}
	s.AutoRenew = false
	return nil
}

// Expire finalizes an active subscription past its expiry. A pending
// downgrade turns into a fresh active period on the lower tier; a canceled
// renewal becomes the terminal canceled state; otherwise the row expires.
func (s *Subscription) Expire(now time.Time) error {
	if s.Status != StatusActive {
		return &ErrTransition{From: s.Status, To: StatusExpired, Reason: "only active subscriptions expire"}
	}
	if s.ExpiresAt == nil || now.Before(*s.ExpiresAt) {
		return &ErrTransition{From: s.Status, To: StatusExpired, Reason: "subscription has not reached its expiry"}
	}

	if s.PendingTier != "" {
		exp := now.Add(Period)
		s.Tier = s.PendingTier
		s.PendingTier = ""
		s.StartedAt = &now
		s.ExpiresAt = &exp
		return nil
	}

	if !s.AutoRenew {
		s.Status = StatusCanceled
		return nil
	}

	s.Status = StatusExpired
	return nil
}

// Filter contains subscription filtering options
type Filter struct {
	Tier   Tier
	Status string
}
