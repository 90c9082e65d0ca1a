package stats

import "context"

// Overview is the aggregated trading-statistics view
type Overview struct {
	Total      int     `json:"total"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Breakevens int     `json:"breakevens"`
	WinRate    float64 `json:"win_rate"`
	// WilsonLow is the 95% Wilson score lower bound on the win rate,
	// computed over decided trades (breakevens excluded).
	WilsonLow    float64 `json:"wilson_low"`
	ProfitFactor float64 `json:"profit_factor"`
	// NoLosses flags the degenerate profit-factor case where gross loss
	// is zero; ProfitFactor is reported as 0 then.
	NoLosses      bool    `json:"no_losses,omitempty"`
	Expectancy    float64 `json:"expectancy"`
	AvgWinPct     float64 `json:"avg_win_pct"`
	AvgLossPct    float64 `json:"avg_loss_pct"`
	BestPct       float64 `json:"best_pct"`
	WorstPct      float64 `json:"worst_pct"`
	NetProfitPct  float64 `json:"net_profit_pct"`
	LongestWinRun int     `json:"longest_win_run"`
	LongestLossRun int    `json:"longest_loss_run"`
}

// OriginBreakdown splits the overview by trade origin
type OriginBreakdown struct {
	Signal Overview `json:"signal"`
	Manual Overview `json:"manual"`
}

// FunnelReport gives per-stage user counts and stage-to-stage conversion
type FunnelReport struct {
	Stages []FunnelStage `json:"stages"`
}

// FunnelStage is one step of the conversion funnel
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Users      int64   `json:"users"`
	Conversion float64 `json:"conversion"`
}

// RevenueReport is the revenue view for the admin surface
type RevenueReport struct {
	MRRCents      int64            `json:"mrr_cents"`
	ActiveByTier  map[string]int64 `json:"active_by_tier"`
	RevenueCents  int64            `json:"revenue_cents"`
	RefundedCents int64            `json:"refunded_cents"`
}

// Service defines the interface for statistics aggregation
type Service interface {
	// UserOverview computes (or serves from cache) a user's overview
	UserOverview(ctx context.Context, userID int64) (*Overview, error)

	// UserOrigins computes a user's overview split by trade origin
	UserOrigins(ctx context.Context, userID int64) (*OriginBreakdown, error)

	// GlobalOverview aggregates over all users
	GlobalOverview(ctx context.Context) (*Overview, error)

	// GlobalOrigins splits the global overview by trade origin
	GlobalOrigins(ctx context.Context) (*OriginBreakdown, error)

	// Funnel builds the conversion funnel report
	Funnel(ctx context.Context) (*FunnelReport, error)

	// Revenue builds the revenue report
	Revenue(ctx context.Context) (*RevenueReport, error)

	// Invalidate bumps the user's cache version after a trade write
	Invalidate(ctx context.Context, userID int64) error
}
