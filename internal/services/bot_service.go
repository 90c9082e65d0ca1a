package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/i18n"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

// BotService turns chat commands from the Telegram bot process into
// localized replies. The bot itself only relays text; all state lives here.
type BotService struct {
	users    user.Service
	subs     subscription.Service
	payments payment.Service
	catalog  *i18n.Catalog
	logger   *logger.Logger
}

// NewBotService creates a new bot command service
func NewBotService(users user.Service, subs subscription.Service, payments payment.Service, catalog *i18n.Catalog, log *logger.Logger) *BotService {
	return &BotService{
		users:    users,
		subs:     subs,
		payments: payments,
		catalog:  catalog,
		logger:   log,
	}
}

// HandleCommand dispatches one chat command and returns the reply text.
// Unknown telegram users are registered on first contact.
func (s *BotService) HandleCommand(ctx context.Context, telegramID int64, username, text string) (string, error) {
	u, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		u, err = s.users.Register(ctx, username, "", "", telegramID)
		if err != nil {
			return "", err
		}
	}

	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return s.catalog.T(u.Language, "unknown_command", nil), nil
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/premium":
		if len(args) > 0 {
			return s.startCheckout(ctx, u, args[0])
		}
		return s.premiumReply(u), nil
	case "/subscription":
		return s.subscriptionReply(ctx, u)
	case "/cancel_subscription":
		return s.cancelReply(ctx, u)
	default:
		if tier, ok := parseTier(cmd); ok {
			return s.startCheckout(ctx, u, string(tier))
		}
		return s.catalog.T(u.Language, "unknown_command", nil), nil
	}
}

// premiumReply renders the pitch and plan list
func (s *BotService) premiumReply(u *user.User) string {
	var lines []string
	for _, tier := range subscription.AllTiers() {
		if tier == subscription.TierFree {
			continue
		}
		lines = append(lines, s.catalog.T(u.Language, "premium_plan_line", map[string]string{
			"tier":  string(tier),
			"price": fmt.Sprintf("%.2f", float64(tier.MonthlyPriceCents())/100),
			"rpm":   fmt.Sprintf("%d", tier.RequestsPerMinute()),
		}))
	}

	return strings.Join([]string{
		s.catalog.T(u.Language, "premium", nil),
		s.catalog.T(u.Language, "premium_plans", map[string]string{
			"plans": strings.Join(lines, "\n"),
		}),
		s.catalog.T(u.Language, "premium_selection", nil),
	}, "\n\n")
}

// startCheckout creates a stripe invoice for the chosen tier and returns
// the payment link
func (s *BotService) startCheckout(ctx context.Context, u *user.User, arg string) (string, error) {
	tier, ok := parseTier(arg)
	if !ok {
		return s.catalog.T(u.Language, "unknown_command", nil), nil
	}

	p, err := s.payments.CreateInvoice(ctx, u.ID, tier, payment.ProviderStripe)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create invoice from chat")
		return s.catalog.T(u.Language, "payment_failed", nil), nil
	}

	return s.catalog.T(u.Language, "premium_checkout", map[string]string{
		"url": p.CheckoutURL,
	}), nil
}

// subscriptionReply renders the current plan status
func (s *BotService) subscriptionReply(ctx context.Context, u *user.User) (string, error) {
	sub, err := s.subs.GetForUser(ctx, u.ID)
	if err != nil {
		return "", err
	}

	if sub.Tier == subscription.TierFree {
		return s.catalog.T(u.Language, "subscription_none", nil), nil
	}

	renewKey := "auto_renew_off"
	if sub.AutoRenew {
		renewKey = "auto_renew_on"
	}

	return s.catalog.T(u.Language, "subscription_status", map[string]string{
		"tier":       string(sub.Tier),
		"status":     sub.Status,
		"expires":    formatExpiry(sub),
		"auto_renew": s.catalog.T(u.Language, renewKey, nil),
	}), nil
}

// cancelReply turns off auto-renewal for the user's paid plan
func (s *BotService) cancelReply(ctx context.Context, u *user.User) (string, error) {
	sub, err := s.subs.Cancel(ctx, u.ID)
	if err != nil {
		return s.catalog.T(u.Language, "cancel_nothing", nil), nil
	}

	return s.catalog.T(u.Language, "cancel_confirm", map[string]string{
		"expires": formatExpiry(sub),
	}), nil
}

func parseTier(arg string) (subscription.Tier, bool) {
	t := subscription.Tier(strings.ToUpper(strings.TrimPrefix(arg, "/")))
	if !t.Valid() || t == subscription.TierFree {
		return "", false
	}
	return t, true
}

func formatExpiry(sub *subscription.Subscription) string {
	if sub.ExpiresAt == nil {
		return "-"
	}
	return sub.ExpiresAt.Format("2006-01-02")
}
