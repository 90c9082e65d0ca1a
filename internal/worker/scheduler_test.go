package worker

import (
	"context"
	"testing"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/stats"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/testutil"
)

type fakeStatsService struct {
	overviewCalls int
	originCalls   int
}

func (f *fakeStatsService) UserOverview(ctx context.Context, userID int64) (*stats.Overview, error) {
	return &stats.Overview{}, nil
}

func (f *fakeStatsService) UserOrigins(ctx context.Context, userID int64) (*stats.OriginBreakdown, error) {
	return &stats.OriginBreakdown{}, nil
}

func (f *fakeStatsService) GlobalOverview(ctx context.Context) (*stats.Overview, error) {
	f.overviewCalls++
	return &stats.Overview{}, nil
}

func (f *fakeStatsService) GlobalOrigins(ctx context.Context) (*stats.OriginBreakdown, error) {
	f.originCalls++
	return &stats.OriginBreakdown{}, nil
}

func (f *fakeStatsService) Funnel(ctx context.Context) (*stats.FunnelReport, error) {
	return &stats.FunnelReport{}, nil
}

func (f *fakeStatsService) Revenue(ctx context.Context) (*stats.RevenueReport, error) {
	return &stats.RevenueReport{}, nil
}

func (f *fakeStatsService) Invalidate(ctx context.Context, userID int64) error { return nil }

type fakeSubscriptionService struct {
	subscription.Service
	expireCalls int
}

func (f *fakeSubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	f.expireCalls++
	return 2, nil
}

func newSchedulerFixture() (*Scheduler, *fakeSubscriptionService, *fakeStatsService) {
	subs := &fakeSubscriptionService{}
	st := &fakeStatsService{}
	cfg := config.WorkerConfig{ExpirySweepSchedule: "@hourly", CacheWarmSchedule: "@every 5m"}
	return NewScheduler(subs, st, cfg, testutil.NewTestLogger()), subs, st
}

func TestScheduler_CacheWarmCoversBothGlobalViews(t *testing.T) {
	s, _, st := newSchedulerFixture()

	s.runCacheWarm()

	if st.overviewCalls != 1 {
		t.Errorf("GlobalOverview calls = %d, want 1", st.overviewCalls)
	}
	if st.originCalls != 1 {
		t.Errorf("GlobalOrigins calls = %d, want 1", st.originCalls)
	}
}

func TestScheduler_ExpirySweep(t *testing.T) {
	s, subs, _ := newSchedulerFixture()

	s.runExpirySweep()

	if subs.expireCalls != 1 {
		t.Errorf("ExpireDue calls = %d, want 1", subs.expireCalls)
	}
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	subs := &fakeSubscriptionService{}
	cfg := config.WorkerConfig{ExpirySweepSchedule: "not a schedule", CacheWarmSchedule: "@hourly"}
	s := NewScheduler(subs, &fakeStatsService{}, cfg, testutil.NewTestLogger())

	if err := s.Start(); err == nil {
		t.Error("Start() with a malformed schedule should fail")
	}
}
