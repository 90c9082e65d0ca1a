package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradepulse/backend/internal/billing"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// PaymentService implements payment.Service
type PaymentService struct {
	repo     payment.Repository
	subs     subscription.Service
	provider billing.Provider
	now      func() time.Time
	logger   *logger.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(repo payment.Repository, subs subscription.Service, provider billing.Provider, log *logger.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		subs:     subs,
		provider: provider,
		now:      time.Now,
		logger:   log,
	}
}

// CreateInvoice creates a pending payment for a tier period
func (s *PaymentService) CreateInvoice(ctx context.Context, userID int64, tier subscription.Tier, provider string) (*payment.Payment, error) {
	if !tier.Valid() || tier == subscription.TierFree {
		return nil, errors.BadRequest("a paid tier is required")
	}
	if provider != payment.ProviderStripe && provider != payment.ProviderManual {
		return nil, errors.BadRequest("unknown payment provider")
	}

	current, err := s.subs.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var sub *subscription.Subscription
	switch {
	case current.Status == subscription.StatusActive && current.Tier == tier:
		// Renewal invoice for the current plan.
		sub = current
	case current.Status == subscription.StatusActive && current.Tier != subscription.TierFree:
		return nil, errors.Conflict("plan changes go through upgrade or downgrade")
	default:
		sub, err = s.subs.StartPending(ctx, userID, tier)
		if err != nil {
			return nil, err
		}
	}

	p := &payment.Payment{
		ID:             uuid.NewString(),
		UserID:         userID,
		SubscriptionID: sub.ID,
		AmountCents:    tier.MonthlyPriceCents(),
		Currency:       "USD",
		Status:         payment.StatusPending,
		Provider:       provider,
		Description:    fmt.Sprintf("TradePulse %s, 30 days", tier),
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create payment")
		return nil, err
	}

	if provider == payment.ProviderStripe {
		session, err := s.provider.CreateCheckout(ctx, userID, p.Description, p.AmountCents, p.Currency)
		if err != nil {
			p.Status = payment.StatusFailed
			if uerr := s.repo.Update(ctx, p); uerr != nil {
				s.logger.ErrorWithErr(uerr, "Failed to mark payment failed")
			}
			metrics.RecordPayment(provider, payment.StatusFailed)
			return nil, errors.PaymentProviderError(provider, err)
		}
		p.ExternalID = session.ID
		p.CheckoutURL = session.URL
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"payment_id": p.ID,
		"user_id":    userID,
		"tier":       tier,
		"provider":   provider,
	}).Info("Invoice created")

	return p, nil
}

// Complete marks a payment completed and activates or extends the linked
// subscription. Safe to call more than once for the same payment.
func (s *PaymentService) Complete(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.Status == payment.StatusCompleted {
		return p, nil
	}
	if !payment.CanTransition(p.Status, payment.StatusCompleted) {
		return nil, errors.InvalidTransition(
			fmt.Sprintf("payment in status %s cannot be completed", p.Status))
	}

	now := s.now()
	p.Status = payment.StatusCompleted
	p.PaidAt = &now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if _, err := s.subs.Activate(ctx, p.SubscriptionID); err != nil {
		// Already-active subscriptions get another period instead.
		if _, err := s.subs.Extend(ctx, p.SubscriptionID); err != nil {
			s.logger.ErrorWithErr(err, "Payment completed but subscription not updated")
		}
	}

	metrics.RecordPayment(p.Provider, payment.StatusCompleted)

	s.logger.WithFields(map[string]interface{}{
		"payment_id":      p.ID,
		"subscription_id": p.SubscriptionID,
		"amount_cents":    p.AmountCents,
	}).Info("Payment completed")

	return p, nil
}

// Fail marks a pending payment failed
func (s *PaymentService) Fail(ctx context.Context, paymentID string, reason string) error {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	if !payment.CanTransition(p.Status, payment.StatusFailed) {
		return errors.InvalidTransition(
			fmt.Sprintf("payment in status %s cannot fail", p.Status))
	}

	p.Status = payment.StatusFailed
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	metrics.RecordPayment(p.Provider, payment.StatusFailed)

	s.logger.WithFields(map[string]interface{}{
		"payment_id": p.ID,
		"reason":     reason,
	}).Warn("Payment failed")

	return nil
}

// Refund marks a completed payment refunded
func (s *PaymentService) Refund(ctx context.Context, paymentID string) error {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	if !payment.CanTransition(p.Status, payment.StatusRefunded) {
		return errors.InvalidTransition(
			fmt.Sprintf("payment in status %s cannot be refunded", p.Status))
	}

	p.Status = payment.StatusRefunded
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	metrics.RecordPayment(p.Provider, payment.StatusRefunded)

	s.logger.WithFields(map[string]interface{}{
		"payment_id": p.ID,
	}).Info("Payment refunded")

	return nil
}

// HandleProviderEvent resolves a provider webhook event to a payment
// transition
func (s *PaymentService) HandleProviderEvent(ctx context.Context, externalID, eventType string) error {
	p, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}

	switch eventType {
	case "checkout.session.completed":
		_, err = s.Complete(ctx, p.ID)
		return err
	case "checkout.session.expired", "payment_intent.payment_failed":
		return s.Fail(ctx, p.ID, eventType)
	case "charge.refunded":
		return s.Refund(ctx, p.ID)
	default:
		s.logger.Debugf("Unhandled provider event type: %s", eventType)
		return nil
	}
}

// GetByID retrieves a payment
func (s *PaymentService) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves payments with filters and pagination
func (s *PaymentService) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Payment, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// GetStats computes the payments stats view
func (s *PaymentService) GetStats(ctx context.Context, filter payment.Filter) (*payment.Stats, error) {
	return s.repo.Aggregate(ctx, filter)
}
