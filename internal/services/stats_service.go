package services

import (
	"context"
	"math"
	"time"

	"github.com/tradepulse/backend/internal/cache"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/stats"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// Cache views
const (
	viewOverview      = "overview"
	viewOrigins       = "origins"
	viewGlobal        = "global"
	viewGlobalOrigins = "global_origins"
)

// globalCacheID is the pseudo user the global overview is cached under.
const globalCacheID int64 = 0

// wilsonZ is the z-score for a 95% confidence interval.
const wilsonZ = 1.96

// StatsService implements stats.Service
type StatsService struct {
	trades   trade.Repository
	users    user.Repository
	subs     subscription.Repository
	payments payment.Repository
	cache    *cache.VersionedCache // nil when Redis is disabled
	logger   *logger.Logger
}

// NewStatsService creates a new statistics service
func NewStatsService(
	trades trade.Repository,
	users user.Repository,
	subs subscription.Repository,
	payments payment.Repository,
	versioned *cache.VersionedCache,
	log *logger.Logger,
) *StatsService {
	return &StatsService{
		trades:   trades,
		users:    users,
		subs:     subs,
		payments: payments,
		cache:    versioned,
		logger:   log,
	}
}

// UserOverview computes (or serves from cache) a user's overview
func (s *StatsService) UserOverview(ctx context.Context, userID int64) (*stats.Overview, error) {
	if s.cache != nil {
		var cached stats.Overview
		err := s.cache.Get(ctx, userID, viewOverview, &cached)
		if err == nil {
			metrics.RecordStatsCacheLookup(viewOverview, "hit")
			return &cached, nil
		}
		if err != cache.ErrMiss {
			s.logger.ErrorWithErr(err, "Stats cache read failed")
		}
		metrics.RecordStatsCacheLookup(viewOverview, "miss")
	}

	start := time.Now()
	outcomes, err := s.trades.ListForUser(ctx, userID, trade.Filter{})
	if err != nil {
		return nil, err
	}
	overview := computeOverview(outcomes)
	metrics.RecordStatsCompute(viewOverview, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, viewOverview, overview); err != nil {
			s.logger.ErrorWithErr(err, "Stats cache write failed")
		}
	}

	return overview, nil
}

// UserOrigins computes a user's overview split by trade origin
func (s *StatsService) UserOrigins(ctx context.Context, userID int64) (*stats.OriginBreakdown, error) {
	if s.cache != nil {
		var cached stats.OriginBreakdown
		err := s.cache.Get(ctx, userID, viewOrigins, &cached)
		if err == nil {
			metrics.RecordStatsCacheLookup(viewOrigins, "hit")
			return &cached, nil
		}
		if err != cache.ErrMiss {
			s.logger.ErrorWithErr(err, "Stats cache read failed")
		}
		metrics.RecordStatsCacheLookup(viewOrigins, "miss")
	}

	start := time.Now()
	outcomes, err := s.trades.ListForUser(ctx, userID, trade.Filter{})
	if err != nil {
		return nil, err
	}

	var signal, manual []*trade.Outcome
	for _, o := range outcomes {
		if o.Origin == trade.OriginSignal {
			signal = append(signal, o)
		} else {
			manual = append(manual, o)
		}
	}

	breakdown := &stats.OriginBreakdown{
		Signal: *computeOverview(signal),
		Manual: *computeOverview(manual),
	}
	metrics.RecordStatsCompute(viewOrigins, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, viewOrigins, breakdown); err != nil {
			s.logger.ErrorWithErr(err, "Stats cache write failed")
		}
	}

	return breakdown, nil
}

// GlobalOverview aggregates over all users
func (s *StatsService) GlobalOverview(ctx context.Context) (*stats.Overview, error) {
	if s.cache != nil {
		var cached stats.Overview
		err := s.cache.Get(ctx, globalCacheID, viewGlobal, &cached)
		if err == nil {
			metrics.RecordStatsCacheLookup(viewGlobal, "hit")
			return &cached, nil
		}
		if err != cache.ErrMiss {
			s.logger.ErrorWithErr(err, "Stats cache read failed")
		}
		metrics.RecordStatsCacheLookup(viewGlobal, "miss")
	}

	start := time.Now()
	outcomes, err := s.trades.ListAll(ctx, trade.Filter{})
	if err != nil {
		return nil, err
	}
	overview := computeOverview(outcomes)
	metrics.RecordStatsCompute(viewGlobal, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, globalCacheID, viewGlobal, overview); err != nil {
			s.logger.ErrorWithErr(err, "Stats cache write failed")
		}
	}

	return overview, nil
}

// GlobalOrigins splits the global overview by trade origin
func (s *StatsService) GlobalOrigins(ctx context.Context) (*stats.OriginBreakdown, error) {
	if s.cache != nil {
		var cached stats.OriginBreakdown
		err := s.cache.Get(ctx, globalCacheID, viewGlobalOrigins, &cached)
		if err == nil {
			metrics.RecordStatsCacheLookup(viewGlobalOrigins, "hit")
			return &cached, nil
		}
		if err != cache.ErrMiss {
			s.logger.ErrorWithErr(err, "Stats cache read failed")
		}
		metrics.RecordStatsCacheLookup(viewGlobalOrigins, "miss")
	}

	start := time.Now()
	outcomes, err := s.trades.ListAll(ctx, trade.Filter{})
	if err != nil {
		return nil, err
	}

	var signal, manual []*trade.Outcome
	for _, o := range outcomes {
		if o.Origin == trade.OriginSignal {
			signal = append(signal, o)
		} else {
			manual = append(manual, o)
		}
	}

	breakdown := &stats.OriginBreakdown{
		Signal: *computeOverview(signal),
		Manual: *computeOverview(manual),
	}
	metrics.RecordStatsCompute(viewGlobalOrigins, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, globalCacheID, viewGlobalOrigins, breakdown); err != nil {
			s.logger.ErrorWithErr(err, "Stats cache write failed")
		}
	}

	return breakdown, nil
}

// Funnel builds the conversion funnel report
func (s *StatsService) Funnel(ctx context.Context) (*stats.FunnelReport, error) {
	counts, err := s.users.CountByFunnelStage(ctx)
	if err != nil {
		return nil, err
	}

	report := &stats.FunnelReport{}
	var prev int64 = -1
	for _, stage := range user.FunnelStages() {
		n := counts[stage]
		conversion := 0.0
		switch {
		case stage == user.StageChurned:
			// Churn is a drop-out bucket, not a conversion step.
		case prev < 0:
			conversion = 1
		case prev > 0:
			conversion = float64(n) / float64(prev)
		}
		report.Stages = append(report.Stages, stats.FunnelStage{
			Stage:      stage,
			Users:      n,
			Conversion: conversion,
		})
		if stage != user.StageChurned {
			prev = n
		}
	}

	return report, nil
}

// Revenue builds the revenue report
func (s *StatsService) Revenue(ctx context.Context) (*stats.RevenueReport, error) {
	counts, err := s.subs.CountActiveByTier(ctx)
	if err != nil {
		return nil, err
	}

	report := &stats.RevenueReport{
		ActiveByTier: make(map[string]int64),
	}
	for tier, count := range counts {
		report.ActiveByTier[string(tier)] = count
		report.MRRCents += tier.MonthlyPriceCents() * count
	}

	pstats, err := s.payments.Aggregate(ctx, payment.Filter{})
	if err != nil {
		return nil, err
	}
	report.RevenueCents = pstats.RevenueCents
	report.RefundedCents = pstats.RefundedCents

	return report, nil
}

// Invalidate bumps the user's cache version after a trade write. The global
// view is bumped too since every trade feeds it.
func (s *StatsService) Invalidate(ctx context.Context, userID int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Bump(ctx, userID); err != nil {
		return err
	}
	return s.cache.Bump(ctx, globalCacheID)
}

// computeOverview aggregates trade outcomes into the overview. Rate-based
// figures use decided trades only: breakevens count toward the total but
// carry no weight in win rate, Wilson bound or expectancy.
func computeOverview(outcomes []*trade.Outcome) *stats.Overview {
	o := &stats.Overview{}

	var grossProfit, grossLoss, net float64
	var winRun, lossRun int

	for i, t := range outcomes {
		o.Total++
		net += t.ProfitPct

		if i == 0 || t.ProfitPct > o.BestPct {
			o.BestPct = t.ProfitPct
		}
		if i == 0 || t.ProfitPct < o.WorstPct {
			o.WorstPct = t.ProfitPct
		}

		switch t.Result {
		case trade.ResultWin:
			o.Wins++
			grossProfit += t.ProfitPct
			winRun++
			lossRun = 0
		case trade.ResultLoss:
			o.Losses++
			grossLoss += -t.ProfitPct
			lossRun++
			winRun = 0
		default:
			o.Breakevens++
			winRun = 0
			lossRun = 0
		}

		if winRun > o.LongestWinRun {
			o.LongestWinRun = winRun
		}
		if lossRun > o.LongestLossRun {
			o.LongestLossRun = lossRun
		}
	}

	o.NetProfitPct = net

	decided := o.Wins + o.Losses
	if decided > 0 {
		pWin := float64(o.Wins) / float64(decided)
		pLoss := float64(o.Losses) / float64(decided)

		o.WinRate = pWin
		o.WilsonLow = wilsonLowerBound(o.Wins, decided)

		if o.Wins > 0 {
			o.AvgWinPct = grossProfit / float64(o.Wins)
		}
		if o.Losses > 0 {
			o.AvgLossPct = grossLoss / float64(o.Losses)
		}
		o.Expectancy = pWin*o.AvgWinPct - pLoss*o.AvgLossPct
	}

	if grossLoss > 0 {
		o.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		o.NoLosses = true
	}

	return o
}

// wilsonLowerBound computes the lower bound of the Wilson score interval
// for wins out of n trials at 95% confidence.
func wilsonLowerBound(wins, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(wins) / float64(n)
	nf := float64(n)
	z := wilsonZ
	z2 := z * z

	denom := 1 + z2/nf
	center := p + z2/(2*nf)
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))

	low := (center - margin) / denom
	if low < 0 {
		return 0
	}
	return low
}
