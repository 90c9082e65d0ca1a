package services

import (
	"context"
	"time"

	"github.com/tradepulse/backend/internal/domain/stats"
	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

// TradeService implements trade.Service
type TradeService struct {
	repo   trade.Repository
	stats  stats.Service
	logger *logger.Logger
}

// NewTradeService creates a new trade service
func NewTradeService(repo trade.Repository, statsSvc stats.Service, log *logger.Logger) trade.Service {
	return &TradeService{
		repo:   repo,
		stats:  statsSvc,
		logger: log,
	}
}

// Record validates and stores a closed trade
func (s *TradeService) Record(ctx context.Context, o *trade.Outcome) (int64, error) {
	if !trade.ValidOrigin(o.Origin) {
		return 0, errors.BadRequest("unknown trade origin")
	}
	if !trade.ValidResult(o.Result) {
		return 0, errors.BadRequest("unknown trade result")
	}
	if o.ClosedAt.Before(o.OpenedAt) {
		return 0, errors.BadRequest("trade closed before it opened")
	}
	switch o.Result {
	case trade.ResultWin:
		if o.ProfitPct <= 0 {
			return 0, errors.BadRequest("a win requires positive profit")
		}
	case trade.ResultLoss:
		if o.ProfitPct >= 0 {
			return 0, errors.BadRequest("a loss requires negative profit")
		}
	case trade.ResultBreakeven:
		if o.ProfitPct != 0 {
			return 0, errors.BadRequest("a breakeven has zero profit")
		}
	}

	o.CreatedAt = time.Now()
	id, err := s.repo.Create(ctx, o)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to record trade")
		return 0, err
	}

	if err := s.stats.Invalidate(ctx, o.UserID); err != nil {
		s.logger.ErrorWithErr(err, "Failed to invalidate stats cache")
	}

	return id, nil
}

// GetByID retrieves a trade outcome
func (s *TradeService) GetByID(ctx context.Context, userID, id int64) (*trade.Outcome, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Delete removes a recorded trade
func (s *TradeService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	if err := s.stats.Invalidate(ctx, userID); err != nil {
		s.logger.ErrorWithErr(err, "Failed to invalidate stats cache")
	}

	return nil
}

// List retrieves trades with filters and pagination
func (s *TradeService) List(ctx context.Context, userID int64, filter trade.Filter, limit, offset int) ([]*trade.Outcome, int64, error) {
	return s.repo.List(ctx, userID, filter, limit, offset)
}
