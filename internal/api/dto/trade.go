package dto

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/trade"
)

// RecordTradeRequest records one closed trade
type RecordTradeRequest struct {
	UserID    int64     `json:"userId" validate:"required"`
	Origin    string    `json:"origin" validate:"required,oneof=signal manual"`
	Result    string    `json:"result" validate:"required,oneof=win loss breakeven"`
	ProfitPct float64   `json:"profitPct"`
	OpenedAt  time.Time `json:"openedAt" validate:"required"`
	ClosedAt  time.Time `json:"closedAt" validate:"required"`
}

// RecordOwnTradeRequest records one closed trade for the authenticated user
type RecordOwnTradeRequest struct {
	Origin    string    `json:"origin" validate:"required,oneof=signal manual"`
	Result    string    `json:"result" validate:"required,oneof=win loss breakeven"`
	ProfitPct float64   `json:"profitPct"`
	OpenedAt  time.Time `json:"openedAt" validate:"required"`
	ClosedAt  time.Time `json:"closedAt" validate:"required"`
}

// TradeDTO represents a trade outcome in API responses
type TradeDTO struct {
	ID        int64     `json:"id"`
	Origin    string    `json:"origin"`
	Result    string    `json:"result"`
	ProfitPct float64   `json:"profitPct"`
	OpenedAt  time.Time `json:"openedAt"`
	ClosedAt  time.Time `json:"closedAt"`
}

// ToTradeDTO converts a domain trade outcome to its API representation
func ToTradeDTO(o *trade.Outcome) *TradeDTO {
	return &TradeDTO{
		ID:        o.ID,
		Origin:    o.Origin,
		Result:    o.Result,
		ProfitPct: o.ProfitPct,
		OpenedAt:  o.OpenedAt,
		ClosedAt:  o.ClosedAt,
	}
}
