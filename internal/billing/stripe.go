package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	stripesub "github.com/stripe/stripe-go/v82/subscription"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

// CheckoutSession is the provider-side handle for a started payment.
type CheckoutSession struct {
	ID  string
	URL string
}

// Provider abstracts the payment provider so services can be tested with a
// fake.
type Provider interface {
	// CreateCheckout starts a checkout session for a one-period charge and
	// returns its ID and hosted payment URL.
	CreateCheckout(ctx context.Context, userID int64, description string, amountCents int64, currency string) (*CheckoutSession, error)

	// CancelAtPeriodEnd flags the provider-side subscription to stop
	// renewing.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
}

// StripeProvider implements Provider over the Stripe API
type StripeProvider struct {
	successURL string
	cancelURL  string
	logger     *logger.Logger
}

// NewStripe creates a Stripe provider. The package-level API key is set
// once here.
func NewStripe(cfg config.BillingConfig, log *logger.Logger) *StripeProvider {
	stripe.Key = cfg.StripeAPIKey
	return &StripeProvider{
		successURL: cfg.CheckoutSuccessURL,
		cancelURL:  cfg.CheckoutCancelURL,
		logger:     log,
	}
}

// CreateCheckout starts a hosted checkout session for a single period charge
func (p *StripeProvider) CreateCheckout(ctx context.Context, userID int64, description string, amountCents int64, currency string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("userID", fmt.Sprintf("%d", userID))

	result, err := session.New(params)
	if err != nil {
		p.logger.ErrorWithErr(err, "Failed to create checkout session")
		return nil, err
	}

	return &CheckoutSession{ID: result.ID, URL: result.URL}, nil
}

// CancelAtPeriodEnd stops the provider-side subscription from renewing
func (p *StripeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
	params.Context = ctx

	if _, err := stripesub.Update(subscriptionID, params); err != nil {
		p.logger.ErrorWithErr(err, "Failed to set cancel at period end")
		return err
	}
	return nil
}
