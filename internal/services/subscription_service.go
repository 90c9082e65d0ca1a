package services

import (
	"context"
	"time"

	"github.com/tradepulse/backend/internal/billing"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

const expireSweepBatch = 500

// SubscriptionService implements subscription.Service
type SubscriptionService struct {
	repo    subscription.Repository
	users   user.Service
	billing billing.Provider
	now     func() time.Time
	logger  *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo subscription.Repository, users user.Service, provider billing.Provider, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:    repo,
		users:   users,
		billing: provider,
		now:     time.Now,
		logger:  log,
	}
}

// GetForUser retrieves the user's current subscription, creating the
// implicit FREE one if none exists
func (s *SubscriptionService) GetForUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	sub, err := s.repo.GetCurrentByUserID(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.ErrCodeNotFound {
		return nil, err
	}

	now := s.now()
	free := &subscription.Subscription{
		UserID:    userID,
		Tier:      subscription.TierFree,
		Status:    subscription.StatusActive,
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.Create(ctx, free)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create free subscription")
		return nil, err
	}
	free.ID = id
	return free, nil
}

// StartPending creates a pending subscription for a paid tier
func (s *SubscriptionService) StartPending(ctx context.Context, userID int64, tier subscription.Tier) (*subscription.Subscription, error) {
	if !tier.Valid() || tier == subscription.TierFree {
		return nil, errors.BadRequest("a paid tier is required")
	}

	current, err := s.repo.GetCurrentByUserID(ctx, userID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.ErrCodeNotFound {
			return nil, err
		}
		current = nil
	}
	if current != nil {
		switch {
		case current.Status == subscription.StatusActive && current.Tier != subscription.TierFree:
			return nil, errors.Conflict("an active paid subscription already exists")
		case current.Status == subscription.StatusPending:
			// Re-selecting a plan replaces the earlier pending choice.
			current.Tier = tier
			current.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, current); err != nil {
				return nil, err
			}
			return current, nil
		case current.Status == subscription.StatusActive:
			// Retire the implicit FREE row so the pending paid row is
			// the user's only non-terminal subscription.
			current.Status = subscription.StatusCanceled
			current.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, current); err != nil {
				return nil, err
			}
		}
	}

	now := s.now()
	sub := &subscription.Subscription{
		UserID:    userID,
		Tier:      tier,
		Status:    subscription.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.Create(ctx, sub)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create pending subscription")
		return nil, err
	}
	sub.ID = id

	metrics.RecordSubscriptionTransition("start_pending", string(tier))
	return sub, nil
}

// Activate activates a pending subscription and promotes the user
func (s *SubscriptionService) Activate(ctx context.Context, id int64) (*subscription.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sub.Activate(s.now()); err != nil {
		return nil, errors.InvalidTransition(err.Error())
	}
	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.users.SetTier(ctx, sub.UserID, sub.Tier); err != nil {
		s.logger.ErrorWithErr(err, "Failed to promote user tier")
	}
	if err := s.users.AdvanceFunnel(ctx, sub.UserID, user.StagePaid); err != nil {
		// Already-paid users cannot advance again; nothing to do.
		s.logger.WithFields(map[string]interface{}{
			"user_id": sub.UserID,
		}).Debugf("Funnel not advanced: %v", err)
	}

	metrics.RecordSubscriptionTransition("activate", string(sub.Tier))

	s.logger.WithFields(map[string]interface{}{
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
		"tier":            sub.Tier,
	}).Info("Subscription activated")

	return sub, nil
}

// Extend adds a period to an active or expired subscription
func (s *SubscriptionService) Extend(ctx context.Context, id int64) (*subscription.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sub.Extend(s.now()); err != nil {
		return nil, errors.InvalidTransition(err.Error())
	}
	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.users.SetTier(ctx, sub.UserID, sub.Tier); err != nil {
		s.logger.ErrorWithErr(err, "Failed to restore user tier")
	}

	metrics.RecordSubscriptionTransition("extend", string(sub.Tier))
	return sub, nil
}

// Upgrade switches to a higher tier immediately with proration
func (s *SubscriptionService) Upgrade(ctx context.Context, userID int64, to subscription.Tier) (*subscription.Subscription, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := sub.Upgrade(to, s.now()); err != nil {
		return nil, errors.InvalidTransition(err.Error())
	}
	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.users.SetTier(ctx, userID, to); err != nil {
		s.logger.ErrorWithErr(err, "Failed to promote user tier")
	}

	metrics.RecordSubscriptionTransition("upgrade", string(to))

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"tier":    to,
	}).Info("Subscription upgraded")

	return sub, nil
}

// Downgrade schedules a lower tier for period end
func (s *SubscriptionService) Downgrade(ctx context.Context, userID int64, to subscription.Tier) (*subscription.Subscription, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := sub.Downgrade(to); err != nil {
		return nil, errors.InvalidTransition(err.Error())
	}
	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionTransition("downgrade", string(to))
	return sub, nil
}

// Cancel turns off auto-renewal for the user's active subscription
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := sub.Cancel(); err != nil {
		return nil, errors.InvalidTransition(err.Error())
	}

	// Provider-managed subscriptions must stop renewing on the provider
	// side too, or Stripe keeps charging after our row lapses.
	if sub.StripeSubscriptionID != "" {
		if err := s.billing.CancelAtPeriodEnd(ctx, sub.StripeSubscriptionID); err != nil {
			return nil, errors.PaymentProviderError("stripe", err)
		}
	}

	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionTransition("cancel", string(sub.Tier))

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"tier":    sub.Tier,
	}).Info("Subscription set to cancel at period end")

	return sub, nil
}

// ExpireDue sweeps active subscriptions past expiry
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.ListDue(ctx, now, expireSweepBatch)
	if err != nil {
		return 0, err
	}

	finalized := 0
	for _, sub := range due {
		prevTier := sub.Tier
		if err := sub.Expire(now); err != nil {
			s.logger.ErrorWithErr(err, "Failed to expire subscription")
			continue
		}
		sub.UpdatedAt = now
		if err := s.repo.Update(ctx, sub); err != nil {
			s.logger.ErrorWithErr(err, "Failed to persist expired subscription")
			continue
		}

		switch {
		case sub.Status == subscription.StatusActive:
			// A pending downgrade became a fresh period on the lower tier.
			if err := s.users.SetTier(ctx, sub.UserID, sub.Tier); err != nil {
				s.logger.ErrorWithErr(err, "Failed to apply downgraded tier")
			}
			metrics.RecordSubscriptionTransition("apply_downgrade", string(sub.Tier))
		default:
			if err := s.users.SetTier(ctx, sub.UserID, subscription.TierFree); err != nil {
				s.logger.ErrorWithErr(err, "Failed to demote user tier")
			}
			if err := s.users.AdvanceFunnel(ctx, sub.UserID, user.StageChurned); err != nil {
				s.logger.ErrorWithErr(err, "Failed to mark user churned")
			}
			metrics.RecordSubscriptionTransition("expire", string(prevTier))
		}
		finalized++
	}

	if counts, err := s.repo.CountActiveByTier(ctx); err == nil {
		for _, t := range subscription.AllTiers() {
			metrics.SetActiveSubscriptions(string(t), float64(counts[t]))
		}
	}

	return finalized, nil
}

// List retrieves subscriptions for the admin surface
func (s *SubscriptionService) List(ctx context.Context, filter subscription.Filter, limit, offset int) ([]*subscription.Subscription, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// MRR returns monthly recurring revenue in cents over active subscriptions
func (s *SubscriptionService) MRR(ctx context.Context) (int64, error) {
	counts, err := s.repo.CountActiveByTier(ctx)
	if err != nil {
		return 0, err
	}

	var mrr int64
	for tier, count := range counts {
		mrr += tier.MonthlyPriceCents() * count
	}
	return mrr, nil
}
