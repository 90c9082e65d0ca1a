package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/repository/postgres"
	"github.com/tradepulse/backend/internal/testutil"
)

func seedSubscription(t *testing.T, repo subscription.Repository, userID int64, tier subscription.Tier, status string, expires *time.Time) *subscription.Subscription {
	t.Helper()
	sub := &subscription.Subscription{
		UserID:    userID,
		Tier:      tier,
		Status:    status,
		ExpiresAt: expires,
	}
	if _, err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sub
}

func TestSubscriptionRepository_CurrentPrefersNewestRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)
	ctx := context.Background()

	exp := time.Now().Add(10 * 24 * time.Hour)
	seedSubscription(t, repo, 7, subscription.TierFree, subscription.StatusActive, nil)
	seedSubscription(t, repo, 7, subscription.TierBasic, subscription.StatusCanceled, &exp)
	want := seedSubscription(t, repo, 7, subscription.TierPremium, subscription.StatusActive, &exp)

	got, err := repo.GetCurrentByUserID(ctx, 7)
	if err != nil {
		t.Fatalf("GetCurrentByUserID: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("got subscription %d, want %d", got.ID, want.ID)
	}
	if got.Tier != subscription.TierPremium {
		t.Errorf("got tier %s, want PREMIUM", got.Tier)
	}
}

func TestSubscriptionRepository_CurrentSkipsTerminalRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)

	seedSubscription(t, repo, 9, subscription.TierBasic, subscription.StatusExpired, nil)
	seedSubscription(t, repo, 9, subscription.TierBasic, subscription.StatusCanceled, nil)

	_, err := repo.GetCurrentByUserID(context.Background(), 9)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscriptionRepository_UpdateRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)
	ctx := context.Background()

	sub := seedSubscription(t, repo, 3, subscription.TierBasic, subscription.StatusPending, nil)

	now := time.Now().UTC().Truncate(time.Second)
	if err := sub.Activate(now); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	sub.PendingTier = subscription.TierFree
	if err := repo.Update(ctx, sub); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != subscription.StatusActive {
		t.Errorf("got status %s, want active", got.Status)
	}
	if !got.AutoRenew {
		t.Error("auto renew not persisted")
	}
	if got.PendingTier != subscription.TierFree {
		t.Errorf("got pending tier %q, want FREE", got.PendingTier)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(now.Add(subscription.Period)) {
		t.Errorf("got expiry %v, want %v", got.ExpiresAt, now.Add(subscription.Period))
	}
}

func TestSubscriptionRepository_UpdateMissingRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)

	err := repo.Update(context.Background(), &subscription.Subscription{ID: 404, Tier: subscription.TierBasic, Status: subscription.StatusActive})
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscriptionRepository_ListDue(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := seedSubscription(t, repo, 1, subscription.TierBasic, subscription.StatusActive, &past)
	seedSubscription(t, repo, 2, subscription.TierBasic, subscription.StatusActive, &future)
	seedSubscription(t, repo, 3, subscription.TierBasic, subscription.StatusExpired, &past)

	got, err := repo.ListDue(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d due subscriptions, want 1", len(got))
	}
	if got[0].ID != due.ID {
		t.Errorf("got subscription %d, want %d", got[0].ID, due.ID)
	}
}

func TestSubscriptionRepository_ListFiltersAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(db)
	ctx := context.Background()

	exp := time.Now().Add(24 * time.Hour)
	seedSubscription(t, repo, 1, subscription.TierBasic, subscription.StatusActive, &exp)
	seedSubscription(t, repo, 2, subscription.TierPremium, subscription.StatusActive, &exp)
	seedSubscription(t, repo, 3, subscription.TierPremium, subscription.StatusActive, &exp)
	seedSubscription(t, repo, 4, subscription.TierPremium, subscription.StatusExpired, &exp)

	subs, total, err := repo.List(ctx, subscription.Filter{Tier: subscription.TierPremium, Status: subscription.StatusActive}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(subs) != 2 {
		t.Errorf("got %d/%d premium active rows, want 2/2", len(subs), total)
	}

	counts, err := repo.CountActiveByTier(ctx)
	if err != nil {
		t.Fatalf("CountActiveByTier: %v", err)
	}
	if counts[subscription.TierBasic] != 1 || counts[subscription.TierPremium] != 2 {
		t.Errorf("unexpected tier counts: %v", counts)
	}
}
