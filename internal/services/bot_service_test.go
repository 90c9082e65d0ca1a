package services

import (
	"context"
	"strings"
	"testing"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/i18n"
	"github.com/tradepulse/backend/internal/testutil"
)

type botFixture struct {
	svc      *BotService
	users    *testutil.MockUserRepository
	payments *PaymentService
	subs     *SubscriptionService
	provider *testutil.MockBillingProvider
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("Failed to load locales: %v", err)
	}

	log := testutil.NewTestLogger()
	userRepo := testutil.NewMockUserRepository()
	users := NewUserService(userRepo, testAuthConfig(), log)
	provider := testutil.NewMockBillingProvider()
	subs := NewSubscriptionService(testutil.NewMockSubscriptionRepository(), users, provider, log)
	payments := NewPaymentService(testutil.NewMockPaymentRepository(), subs, provider, log)

	return &botFixture{
		svc:      NewBotService(users, subs, payments, catalog, log),
		users:    userRepo,
		payments: payments,
		subs:     subs,
		provider: provider,
	}
}

func TestBotService_RegistersUnknownUser(t *testing.T) {
	f := newBotFixture(t)

	reply, err := f.svc.HandleCommand(context.Background(), 555, "newtrader", "/premium")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if reply == "" {
		t.Fatal("HandleCommand() returned an empty reply")
	}

	if _, err := f.users.GetByTelegramID(context.Background(), 555); err != nil {
		t.Error("first contact should register the telegram user")
	}
}

func TestBotService_PremiumListsPlans(t *testing.T) {
	f := newBotFixture(t)

	reply, err := f.svc.HandleCommand(context.Background(), 555, "trader", "/premium")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}

	for _, want := range []string{"BASIC", "PREMIUM", "VIP", "$9.90", "$24.90", "$49.90"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if strings.Contains(reply, "FREE") {
		t.Error("plan list should not offer the free tier")
	}
}

func TestBotService_PlanSelectionStartsCheckout(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	reply, err := f.svc.HandleCommand(ctx, 555, "trader", "/premium basic")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, f.provider.NextURL) {
		t.Errorf("reply should carry the checkout URL, got:\n%s", reply)
	}
	if f.provider.Created != 1 {
		t.Errorf("checkout sessions = %d, want 1", f.provider.Created)
	}

	// Bare tier name works as a selection too.
	if _, err := f.svc.HandleCommand(ctx, 556, "other", "premium"); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if f.provider.Created != 2 {
		t.Errorf("checkout sessions = %d, want 2", f.provider.Created)
	}
}

func TestBotService_CheckoutFailureIsLocalized(t *testing.T) {
	f := newBotFixture(t)
	f.provider.CreateError = context.DeadlineExceeded

	reply, err := f.svc.HandleCommand(context.Background(), 555, "trader", "/premium vip")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "Failed to create an invoice") {
		t.Errorf("reply should be the payment-failed message, got:\n%s", reply)
	}
}

func TestBotService_SubscriptionStatus(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	// Free user gets the upsell message.
	reply, err := f.svc.HandleCommand(ctx, 555, "trader", "/subscription")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "free plan") {
		t.Errorf("free user reply = %q, want the free-plan message", reply)
	}

	// Activate a paid plan and ask again.
	u, _ := f.users.GetByTelegramID(ctx, 555)
	pending, _ := f.subs.StartPending(ctx, u.ID, subscription.TierPremium)
	if _, err := f.subs.Activate(ctx, pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	reply, err = f.svc.HandleCommand(ctx, 555, "trader", "/subscription")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "PREMIUM") || !strings.Contains(reply, "active") {
		t.Errorf("paid user reply missing plan details:\n%s", reply)
	}
}

func TestBotService_CancelSubscription(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	// Nothing to cancel on the free tier.
	reply, err := f.svc.HandleCommand(ctx, 555, "trader", "/cancel_subscription")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "no paid subscription") {
		t.Errorf("free user cancel reply = %q", reply)
	}

	u, _ := f.users.GetByTelegramID(ctx, 555)
	pending, _ := f.subs.StartPending(ctx, u.ID, subscription.TierBasic)
	if _, err := f.subs.Activate(ctx, pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	reply, err = f.svc.HandleCommand(ctx, 555, "trader", "/cancel_subscription")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "will not renew") {
		t.Errorf("cancel reply = %q, want the confirmation", reply)
	}

	sub, _ := f.subs.GetForUser(ctx, u.ID)
	if sub.AutoRenew {
		t.Error("cancel command should turn auto-renewal off")
	}
}

func TestBotService_RussianLocale(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	if _, err := f.svc.HandleCommand(ctx, 555, "trader", "/premium"); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	u, _ := f.users.GetByTelegramID(ctx, 555)
	u.Language = "ru"
	if err := f.users.Update(ctx, u); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reply, err := f.svc.HandleCommand(ctx, 555, "trader", "/subscription")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "бесплатный") {
		t.Errorf("russian reply = %q, want the russian free-plan message", reply)
	}
}

func TestBotService_UnknownCommand(t *testing.T) {
	f := newBotFixture(t)

	reply, err := f.svc.HandleCommand(context.Background(), 555, "trader", "/frobnicate")
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !strings.Contains(reply, "Unknown command") {
		t.Errorf("reply = %q, want the unknown-command message", reply)
	}
}
