package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/stats"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the periodic background jobs: the subscription expiry
// sweep and the global stats cache warmer.
type Scheduler struct {
	cron   *cron.Cron
	subs   subscription.Service
	stats  stats.Service
	cfg    config.WorkerConfig
	logger *logger.Logger
}

// NewScheduler creates the background job scheduler
func NewScheduler(subs subscription.Service, st stats.Service, cfg config.WorkerConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		subs:   subs,
		stats:  st,
		cfg:    cfg,
		logger: log,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ExpirySweepSchedule, s.runExpirySweep); err != nil {
		return fmt.Errorf("invalid expiry sweep schedule: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.CacheWarmSchedule, s.runCacheWarm); err != nil {
		return fmt.Errorf("invalid cache warm schedule: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(map[string]interface{}{
		"expiry_sweep": s.cfg.ExpirySweepSchedule,
		"cache_warm":   s.cfg.CacheWarmSchedule,
	}).Info("Background scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Background scheduler stopped")
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	expired, err := s.subs.ExpireDue(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Subscription expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithFields(map[string]interface{}{
			"expired": expired,
		}).Info("Subscription expiry sweep finished")
	}
}

// runCacheWarm recomputes both public track-record views so neither the
// overview nor the origin split hits a cold cache after the TTL lapses.
func (s *Scheduler) runCacheWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.stats.GlobalOverview(ctx); err != nil {
		s.logger.ErrorWithErr(err, "Global stats warmup failed")
	}
	if _, err := s.stats.GlobalOrigins(ctx); err != nil {
		s.logger.ErrorWithErr(err, "Global origin stats warmup failed")
	}
}
