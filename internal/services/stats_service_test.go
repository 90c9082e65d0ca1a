package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tradepulse/backend/internal/cache"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/testutil"
)

const statsEpsilon = 1e-9

type statsFixture struct {
	svc      *StatsService
	trades   *testutil.MockTradeRepository
	users    *testutil.MockUserRepository
	subs     *testutil.MockSubscriptionRepository
	payments *testutil.MockPaymentRepository
}

func newStatsFixture(t *testing.T, versioned *cache.VersionedCache) *statsFixture {
	t.Helper()
	f := &statsFixture{
		trades:   testutil.NewMockTradeRepository(),
		users:    testutil.NewMockUserRepository(),
		subs:     testutil.NewMockSubscriptionRepository(),
		payments: testutil.NewMockPaymentRepository(),
	}
	f.svc = NewStatsService(f.trades, f.users, f.subs, f.payments, versioned, testutil.NewTestLogger())
	return f
}

func newTestCache(t *testing.T) *cache.VersionedCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewVersioned(client, time.Minute)
}

func seedTrade(t *testing.T, repo *testutil.MockTradeRepository, userID int64, origin, result string, profit float64, day int) {
	t.Helper()
	closed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(day) * 24 * time.Hour)
	_, err := repo.Create(context.Background(), &trade.Outcome{
		UserID:    userID,
		Origin:    origin,
		Result:    result,
		ProfitPct: profit,
		OpenedAt:  closed.Add(-time.Hour),
		ClosedAt:  closed,
	})
	if err != nil {
		t.Fatalf("Failed to seed trade: %v", err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < statsEpsilon
}

func TestStatsService_UserOverview(t *testing.T) {
	f := newStatsFixture(t, nil)

	// 3 wins (+4, +2, +6), 2 losses (-3, -1), 1 breakeven, in order:
	// W W L B W L
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 4, 0)
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 2, 1)
	seedTrade(t, f.trades, 1, trade.OriginManual, trade.ResultLoss, -3, 2)
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultBreakeven, 0, 3)
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 6, 4)
	seedTrade(t, f.trades, 1, trade.OriginManual, trade.ResultLoss, -1, 5)

	o, err := f.svc.UserOverview(context.Background(), 1)
	if err != nil {
		t.Fatalf("UserOverview() error = %v", err)
	}

	if o.Total != 6 || o.Wins != 3 || o.Losses != 2 || o.Breakevens != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 6/3/2/1", o.Total, o.Wins, o.Losses, o.Breakevens)
	}

	// Rates are over the 5 decided trades.
	if !almostEqual(o.WinRate, 3.0/5.0) {
		t.Errorf("WinRate = %v, want 0.6", o.WinRate)
	}
	if !almostEqual(o.AvgWinPct, 4.0) {
		t.Errorf("AvgWinPct = %v, want 4", o.AvgWinPct)
	}
	if !almostEqual(o.AvgLossPct, 2.0) {
		t.Errorf("AvgLossPct = %v, want 2", o.AvgLossPct)
	}
	// E = 0.6*4 - 0.4*2 = 1.6
	if !almostEqual(o.Expectancy, 1.6) {
		t.Errorf("Expectancy = %v, want 1.6", o.Expectancy)
	}
	// PF = 12 / 4 = 3
	if !almostEqual(o.ProfitFactor, 3.0) {
		t.Errorf("ProfitFactor = %v, want 3", o.ProfitFactor)
	}
	if o.NoLosses {
		t.Error("NoLosses should be false when losses exist")
	}
	if !almostEqual(o.NetProfitPct, 8.0) {
		t.Errorf("NetProfitPct = %v, want 8", o.NetProfitPct)
	}
	if o.BestPct != 6 || o.WorstPct != -3 {
		t.Errorf("best/worst = %v/%v, want 6/-3", o.BestPct, o.WorstPct)
	}
	if o.LongestWinRun != 2 || o.LongestLossRun != 1 {
		t.Errorf("runs = %d/%d, want 2/1", o.LongestWinRun, o.LongestLossRun)
	}

	// Wilson 95% lower bound for 3/5.
	want := wilsonLowerBound(3, 5)
	if !almostEqual(o.WilsonLow, want) {
		t.Errorf("WilsonLow = %v, want %v", o.WilsonLow, want)
	}
	if o.WilsonLow <= 0 || o.WilsonLow >= o.WinRate {
		t.Errorf("WilsonLow = %v should sit strictly below the win rate", o.WilsonLow)
	}
}

func TestWilsonLowerBound(t *testing.T) {
	tests := []struct {
		name string
		wins int
		n    int
		want float64
	}{
		{"no trades", 0, 0, 0},
		{"all losses", 0, 10, 0},
		// Known value: 9/10 at z=1.96 gives ~0.5958.
		{"nine of ten", 9, 10, 0.5958},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wilsonLowerBound(tt.wins, tt.n)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("wilsonLowerBound(%d, %d) = %v, want %v", tt.wins, tt.n, got, tt.want)
			}
		})
	}
}

func TestComputeOverview_NoLosses(t *testing.T) {
	o := computeOverview([]*trade.Outcome{
		{Result: trade.ResultWin, ProfitPct: 2},
		{Result: trade.ResultWin, ProfitPct: 3},
	})

	if !o.NoLosses {
		t.Error("NoLosses should be set when gross loss is zero")
	}
	if o.ProfitFactor != 0 {
		t.Errorf("ProfitFactor = %v, want 0 in the no-loss case", o.ProfitFactor)
	}
}

func TestComputeOverview_Empty(t *testing.T) {
	o := computeOverview(nil)
	if o.Total != 0 || o.WinRate != 0 || o.WilsonLow != 0 || o.Expectancy != 0 {
		t.Errorf("empty overview should be all zeros, got %+v", o)
	}
}

func TestStatsService_UserOrigins(t *testing.T) {
	f := newStatsFixture(t, nil)

	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 5, 0)
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultLoss, -2, 1)
	seedTrade(t, f.trades, 1, trade.OriginManual, trade.ResultWin, 1, 2)

	b, err := f.svc.UserOrigins(context.Background(), 1)
	if err != nil {
		t.Fatalf("UserOrigins() error = %v", err)
	}

	if b.Signal.Total != 2 || b.Signal.Wins != 1 {
		t.Errorf("signal = %d total %d wins, want 2/1", b.Signal.Total, b.Signal.Wins)
	}
	if b.Manual.Total != 1 || b.Manual.Wins != 1 {
		t.Errorf("manual = %d total %d wins, want 1/1", b.Manual.Total, b.Manual.Wins)
	}
}

func TestStatsService_CacheReadThrough(t *testing.T) {
	f := newStatsFixture(t, newTestCache(t))
	ctx := context.Background()

	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 3, 0)

	first, err := f.svc.UserOverview(ctx, 1)
	if err != nil {
		t.Fatalf("UserOverview() error = %v", err)
	}
	if first.Total != 1 {
		t.Fatalf("Total = %d, want 1", first.Total)
	}

	// A write the service has not seen: without invalidation the cached
	// view keeps being served.
	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultLoss, -1, 1)

	cached, err := f.svc.UserOverview(ctx, 1)
	if err != nil {
		t.Fatalf("UserOverview() error = %v", err)
	}
	if cached.Total != 1 {
		t.Errorf("Total = %d, want stale 1 before invalidation", cached.Total)
	}

	if err := f.svc.Invalidate(ctx, 1); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	fresh, err := f.svc.UserOverview(ctx, 1)
	if err != nil {
		t.Fatalf("UserOverview() error = %v", err)
	}
	if fresh.Total != 2 {
		t.Errorf("Total = %d, want 2 after invalidation", fresh.Total)
	}
}

func TestStatsService_InvalidateBumpsGlobal(t *testing.T) {
	f := newStatsFixture(t, newTestCache(t))
	ctx := context.Background()

	seedTrade(t, f.trades, 1, trade.OriginSignal, trade.ResultWin, 3, 0)

	global, err := f.svc.GlobalOverview(ctx)
	if err != nil {
		t.Fatalf("GlobalOverview() error = %v", err)
	}
	if global.Total != 1 {
		t.Fatalf("Total = %d, want 1", global.Total)
	}

	seedTrade(t, f.trades, 2, trade.OriginManual, trade.ResultWin, 1, 1)
	if err := f.svc.Invalidate(ctx, 2); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	global, err = f.svc.GlobalOverview(ctx)
	if err != nil {
		t.Fatalf("GlobalOverview() error = %v", err)
	}
	if global.Total != 2 {
		t.Errorf("Total = %d, want 2 after another user's trade", global.Total)
	}
}

func TestStatsService_Funnel(t *testing.T) {
	f := newStatsFixture(t, nil)
	ctx := context.Background()

	stages := []string{
		user.StageVisitor, user.StageVisitor, user.StageVisitor, user.StageVisitor,
		user.StageRegistered, user.StageRegistered,
		user.StagePaid,
		user.StageChurned,
	}
	for i, stage := range stages {
		if err := f.users.Create(ctx, &user.User{Username: string(rune('a' + i)), FunnelStage: stage}); err != nil {
			t.Fatalf("Failed to seed user: %v", err)
		}
	}

	report, err := f.svc.Funnel(ctx)
	if err != nil {
		t.Fatalf("Funnel() error = %v", err)
	}

	byStage := make(map[string]struct {
		users      int64
		conversion float64
	})
	for _, s := range report.Stages {
		byStage[s.Stage] = struct {
			users      int64
			conversion float64
		}{s.Users, s.Conversion}
	}

	if got := byStage[user.StageVisitor]; got.users != 4 || !almostEqual(got.conversion, 1) {
		t.Errorf("visitor = %+v, want 4 users, conversion 1", got)
	}
	if got := byStage[user.StageRegistered]; got.users != 2 || !almostEqual(got.conversion, 0.5) {
		t.Errorf("registered = %+v, want 2 users, conversion 0.5", got)
	}
	if got := byStage[user.StageTrial]; got.users != 0 || !almostEqual(got.conversion, 0) {
		t.Errorf("trial = %+v, want 0 users, conversion 0", got)
	}
	if got := byStage[user.StageChurned]; got.users != 1 {
		t.Errorf("churned = %+v, want 1 user", got)
	}
}

func TestStatsService_Revenue(t *testing.T) {
	f := newStatsFixture(t, nil)
	ctx := context.Background()

	now := time.Now()
	for _, tier := range []subscription.Tier{subscription.TierBasic, subscription.TierVIP} {
		if _, err := f.subs.Create(ctx, &subscription.Subscription{
			UserID:    1,
			Tier:      tier,
			Status:    subscription.StatusActive,
			StartedAt: &now,
		}); err != nil {
			t.Fatalf("Failed to seed subscription: %v", err)
		}
	}

	if err := f.payments.Create(ctx, &payment.Payment{
		ID: "p1", UserID: 1, AmountCents: 990, Status: payment.StatusCompleted, Provider: payment.ProviderStripe,
	}); err != nil {
		t.Fatalf("Failed to seed payment: %v", err)
	}
	if err := f.payments.Create(ctx, &payment.Payment{
		ID: "p2", UserID: 2, AmountCents: 4990, Status: payment.StatusRefunded, Provider: payment.ProviderStripe,
	}); err != nil {
		t.Fatalf("Failed to seed payment: %v", err)
	}

	report, err := f.svc.Revenue(ctx)
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}

	if report.MRRCents != 990+4990 {
		t.Errorf("MRRCents = %d, want %d", report.MRRCents, 990+4990)
	}
	if report.ActiveByTier["BASIC"] != 1 || report.ActiveByTier["VIP"] != 1 {
		t.Errorf("ActiveByTier = %v, want one BASIC and one VIP", report.ActiveByTier)
	}
	if report.RevenueCents != 990 {
		t.Errorf("RevenueCents = %d, want 990", report.RevenueCents)
	}
	if report.RefundedCents != 4990 {
		t.Errorf("RefundedCents = %d, want 4990", report.RefundedCents)
	}
}
