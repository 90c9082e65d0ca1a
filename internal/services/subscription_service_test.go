package services

import (
	"context"
	"testing"
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/testutil"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *testutil.MockSubscriptionRepository, *testutil.MockUserRepository, *testutil.MockBillingProvider) {
	t.Helper()
	subRepo := testutil.NewMockSubscriptionRepository()
	userRepo := testutil.NewMockUserRepository()
	provider := testutil.NewMockBillingProvider()
	log := testutil.NewTestLogger()
	users := NewUserService(userRepo, testAuthConfig(), log)
	svc := NewSubscriptionService(subRepo, users, provider, log)
	return svc, subRepo, userRepo, provider
}

func registeredUser(t *testing.T, repo *testutil.MockUserRepository) *user.User {
	t.Helper()
	u := &user.User{
		TelegramID:  100,
		Username:    "trader",
		Tier:        subscription.TierFree,
		FunnelStage: user.StageRegistered,
		Language:    "en",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return u
}

func TestSubscriptionService_GetForUserCreatesFree(t *testing.T) {
	svc, subRepo, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	sub, err := svc.GetForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if sub.Tier != subscription.TierFree {
		t.Errorf("GetForUser() tier = %v, want FREE", sub.Tier)
	}
	if sub.Status != subscription.StatusActive {
		t.Errorf("GetForUser() status = %v, want active", sub.Status)
	}
	if len(subRepo.Subs) != 1 {
		t.Errorf("GetForUser() created %d rows, want 1", len(subRepo.Subs))
	}

	// A second read returns the same row rather than creating another.
	again, err := svc.GetForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetForUser() second call error = %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("GetForUser() returned new row %d, want %d", again.ID, sub.ID)
	}
}

func TestSubscriptionService_ActivatePromotesUser(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	pending, err := svc.StartPending(context.Background(), u.ID, subscription.TierPremium)
	if err != nil {
		t.Fatalf("StartPending() error = %v", err)
	}

	active, err := svc.Activate(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if active.Status != subscription.StatusActive {
		t.Errorf("Activate() status = %v, want active", active.Status)
	}
	wantExpiry := now.Add(subscription.Period)
	if !active.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("Activate() expiry = %v, want %v", active.ExpiresAt, wantExpiry)
	}
	if !active.AutoRenew {
		t.Error("Activate() should turn auto-renewal on")
	}

	got := userRepo.Users[u.ID]
	if got.Tier != subscription.TierPremium {
		t.Errorf("user tier = %v, want PREMIUM", got.Tier)
	}
	if got.FunnelStage != user.StagePaid {
		t.Errorf("funnel stage = %v, want paid", got.FunnelStage)
	}
}

func TestSubscriptionService_ActivateRejectsNonPending(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierBasic)
	if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if _, err := svc.Activate(context.Background(), pending.ID); err == nil {
		t.Error("Activate() on an active subscription should fail")
	}
}

func TestSubscriptionService_ExtendKeepsAnchor(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierBasic)
	active, _ := svc.Activate(context.Background(), pending.ID)

	// Renewal mid-period stacks on the current expiry, not on now.
	svc.now = func() time.Time { return start.Add(10 * 24 * time.Hour) }
	extended, err := svc.Extend(context.Background(), active.ID)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	want := start.Add(2 * subscription.Period)
	if !extended.ExpiresAt.Equal(want) {
		t.Errorf("Extend() expiry = %v, want %v", extended.ExpiresAt, want)
	}
}

func TestSubscriptionService_ExtendFreeRowFails(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	// The implicit FREE row is active with no expiry; extending it must
	// be rejected, not crash on the missing expiry.
	free, err := svc.GetForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	_, err = svc.Extend(context.Background(), free.ID)
	if err == nil {
		t.Fatal("Extend() on the implicit FREE row should fail")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeInvalidTransition {
		t.Errorf("Extend() error = %v, want invalid transition", err)
	}
}

func TestSubscriptionService_CheckoutRetiresFreeRow(t *testing.T) {
	svc, subRepo, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	if _, err := svc.GetForUser(context.Background(), u.ID); err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	pending, err := svc.StartPending(context.Background(), u.ID, subscription.TierPremium)
	if err != nil {
		t.Fatalf("StartPending() error = %v", err)
	}
	if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	// At most one non-terminal row per user: the FREE row is retired by
	// the checkout, so the paid row is the only one left.
	nonTerminal := 0
	for _, s := range subRepo.Subs {
		if s.Status == subscription.StatusPending || s.Status == subscription.StatusActive {
			nonTerminal++
		}
	}
	if nonTerminal != 1 {
		t.Errorf("non-terminal rows = %d, want 1", nonTerminal)
	}

	counts, err := subRepo.CountActiveByTier(context.Background())
	if err != nil {
		t.Fatalf("CountActiveByTier() error = %v", err)
	}
	if counts[subscription.TierFree] != 0 {
		t.Errorf("active FREE rows = %d, want 0", counts[subscription.TierFree])
	}
	if counts[subscription.TierPremium] != 1 {
		t.Errorf("active PREMIUM rows = %d, want 1", counts[subscription.TierPremium])
	}

	current, err := svc.GetForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if current.Tier != subscription.TierPremium || current.Status != subscription.StatusActive {
		t.Errorf("current = %s/%s, want PREMIUM/active", current.Tier, current.Status)
	}
}

func TestSubscriptionService_UpgradeProration(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierBasic)
	if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	// 20 full days remain on BASIC (990c). Credit on PREMIUM (2490c) is
	// 20*990/2490 = 7 whole days.
	upgradeAt := start.Add(10 * 24 * time.Hour)
	svc.now = func() time.Time { return upgradeAt }

	upgraded, err := svc.Upgrade(context.Background(), u.ID, subscription.TierPremium)
	if err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	want := upgradeAt.Add(subscription.Period + 7*24*time.Hour)
	if !upgraded.ExpiresAt.Equal(want) {
		t.Errorf("Upgrade() expiry = %v, want %v", upgraded.ExpiresAt, want)
	}
	if upgraded.Tier != subscription.TierPremium {
		t.Errorf("Upgrade() tier = %v, want PREMIUM", upgraded.Tier)
	}
	if userRepo.Users[u.ID].Tier != subscription.TierPremium {
		t.Error("Upgrade() should promote the user row immediately")
	}
}

func TestSubscriptionService_UpgradeRejectsLowerTier(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierVIP)
	if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if _, err := svc.Upgrade(context.Background(), u.ID, subscription.TierBasic); err == nil {
		t.Error("Upgrade() to a lower tier should fail")
	}
}

func TestSubscriptionService_DowngradeIsDeferred(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierVIP)
	active, _ := svc.Activate(context.Background(), pending.ID)

	downgraded, err := svc.Downgrade(context.Background(), u.ID, subscription.TierBasic)
	if err != nil {
		t.Fatalf("Downgrade() error = %v", err)
	}

	if downgraded.Tier != subscription.TierVIP {
		t.Errorf("Downgrade() tier = %v, want unchanged VIP", downgraded.Tier)
	}
	if downgraded.PendingTier != subscription.TierBasic {
		t.Errorf("Downgrade() pending tier = %v, want BASIC", downgraded.PendingTier)
	}
	if !downgraded.ExpiresAt.Equal(*active.ExpiresAt) {
		t.Error("Downgrade() should not touch the current expiry")
	}
	if userRepo.Users[u.ID].Tier != subscription.TierVIP {
		t.Error("Downgrade() should not demote the user until period end")
	}
}

func TestSubscriptionService_CancelKeepsAccess(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierPremium)
	active, _ := svc.Activate(context.Background(), pending.ID)

	canceled, err := svc.Cancel(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if canceled.Status != subscription.StatusActive {
		t.Errorf("Cancel() status = %v, want still active", canceled.Status)
	}
	if canceled.AutoRenew {
		t.Error("Cancel() should turn auto-renewal off")
	}
	if !canceled.ExpiresAt.Equal(*active.ExpiresAt) {
		t.Error("Cancel() should keep the paid-through expiry")
	}
}

func TestSubscriptionService_CancelNotifiesProvider(t *testing.T) {
	svc, subRepo, userRepo, provider := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierPremium)
	active, err := svc.Activate(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	subRepo.Subs[active.ID].StripeSubscriptionID = "sub_stripe_42"

	if _, err := svc.Cancel(context.Background(), u.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if len(provider.Canceled) != 1 || provider.Canceled[0] != "sub_stripe_42" {
		t.Errorf("provider cancellations = %v, want [sub_stripe_42]", provider.Canceled)
	}
}

func TestSubscriptionService_CancelProviderFailure(t *testing.T) {
	svc, subRepo, userRepo, provider := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	pending, _ := svc.StartPending(context.Background(), u.ID, subscription.TierPremium)
	active, err := svc.Activate(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	subRepo.Subs[active.ID].StripeSubscriptionID = "sub_stripe_42"
	provider.CancelError = context.DeadlineExceeded

	_, err = svc.Cancel(context.Background(), u.ID)
	if err == nil {
		t.Fatal("Cancel() should surface the provider failure")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodePaymentProvider {
		t.Errorf("Cancel() error = %v, want payment provider error", err)
	}
}

func TestSubscriptionService_CancelFreeFails(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)
	u := registeredUser(t, userRepo)

	if _, err := svc.GetForUser(context.Background(), u.ID); err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}

	if _, err := svc.Cancel(context.Background(), u.ID); err == nil {
		t.Error("Cancel() on the free tier should fail")
	}
}

func TestSubscriptionService_ExpireDue(t *testing.T) {
	svc, subRepo, userRepo, _ := newSubscriptionFixture(t)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	// Three paid users: one renewing, one canceled, one with a pending
	// downgrade.
	renewing := registeredUser(t, userRepo)
	leaving := registeredUser(t, userRepo)
	downgrading := registeredUser(t, userRepo)

	for _, tc := range []struct {
		userID int64
		tier   subscription.Tier
	}{
		{renewing.ID, subscription.TierBasic},
		{leaving.ID, subscription.TierPremium},
		{downgrading.ID, subscription.TierVIP},
	} {
		pending, _ := svc.StartPending(context.Background(), tc.userID, tc.tier)
		if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
	}

	if _, err := svc.Cancel(context.Background(), leaving.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := svc.Downgrade(context.Background(), downgrading.ID, subscription.TierBasic); err != nil {
		t.Fatalf("Downgrade() error = %v", err)
	}

	// Jump past the period and sweep.
	after := start.Add(subscription.Period + time.Hour)
	svc.now = func() time.Time { return after }

	n, err := svc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("ExpireDue() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("ExpireDue() finalized %d rows, want 3", n)
	}

	byUser := make(map[int64]*subscription.Subscription)
	for _, s := range subRepo.Subs {
		byUser[s.UserID] = s
	}

	if got := byUser[renewing.ID]; got.Status != subscription.StatusExpired {
		t.Errorf("renewing sub status = %v, want expired", got.Status)
	}
	if got := userRepo.Users[renewing.ID]; got.Tier != subscription.TierFree {
		t.Errorf("renewing user tier = %v, want FREE", got.Tier)
	}

	if got := byUser[leaving.ID]; got.Status != subscription.StatusCanceled {
		t.Errorf("canceled sub status = %v, want canceled", got.Status)
	}
	if got := userRepo.Users[leaving.ID]; got.FunnelStage != user.StageChurned {
		t.Errorf("canceled user stage = %v, want churned", got.FunnelStage)
	}

	applied := byUser[downgrading.ID]
	if applied.Status != subscription.StatusActive {
		t.Errorf("downgraded sub status = %v, want active", applied.Status)
	}
	if applied.Tier != subscription.TierBasic {
		t.Errorf("downgraded sub tier = %v, want BASIC", applied.Tier)
	}
	if applied.PendingTier != "" {
		t.Errorf("downgraded sub pending tier = %v, want cleared", applied.PendingTier)
	}
	wantExpiry := after.Add(subscription.Period)
	if !applied.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("downgraded sub expiry = %v, want %v", applied.ExpiresAt, wantExpiry)
	}
	if got := userRepo.Users[downgrading.ID]; got.Tier != subscription.TierBasic {
		t.Errorf("downgraded user tier = %v, want BASIC", got.Tier)
	}
}

func TestSubscriptionService_MRR(t *testing.T) {
	svc, _, userRepo, _ := newSubscriptionFixture(t)

	for _, tier := range []subscription.Tier{
		subscription.TierBasic,
		subscription.TierPremium,
		subscription.TierPremium,
		subscription.TierVIP,
	} {
		u := registeredUser(t, userRepo)
		pending, _ := svc.StartPending(context.Background(), u.ID, tier)
		if _, err := svc.Activate(context.Background(), pending.ID); err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
	}

	mrr, err := svc.MRR(context.Background())
	if err != nil {
		t.Fatalf("MRR() error = %v", err)
	}

	want := int64(990 + 2*2490 + 4990)
	if mrr != want {
		t.Errorf("MRR() = %d, want %d", mrr, want)
	}
}
