package client

import "context"

// StatsService handles trading statistics queries
type StatsService struct {
	client *Client
}

// Overview is the aggregated trading-statistics view
type Overview struct {
	Total          int     `json:"total"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Breakevens     int     `json:"breakevens"`
	WinRate        float64 `json:"win_rate"`
	WilsonLow      float64 `json:"wilson_low"`
	ProfitFactor   float64 `json:"profit_factor"`
	NoLosses       bool    `json:"no_losses,omitempty"`
	Expectancy     float64 `json:"expectancy"`
	AvgWinPct      float64 `json:"avg_win_pct"`
	AvgLossPct     float64 `json:"avg_loss_pct"`
	BestPct        float64 `json:"best_pct"`
	WorstPct       float64 `json:"worst_pct"`
	NetProfitPct   float64 `json:"net_profit_pct"`
	LongestWinRun  int     `json:"longest_win_run"`
	LongestLossRun int     `json:"longest_loss_run"`
}

// OriginBreakdown splits the overview by trade origin
type OriginBreakdown struct {
	Signal Overview `json:"signal"`
	Manual Overview `json:"manual"`
}

// GlobalOverview returns the public track record
func (s *StatsService) GlobalOverview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := s.client.doRequest(ctx, "GET", "/api/stats/trading/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// GlobalOrigins returns the public track record split by trade origin
func (s *StatsService) GlobalOrigins(ctx context.Context) (*OriginBreakdown, error) {
	var breakdown OriginBreakdown
	if err := s.client.doRequest(ctx, "GET", "/api/stats/trading/origins", nil, &breakdown); err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// MyOverview returns the caller's trading overview
func (s *StatsService) MyOverview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := s.client.doRequest(ctx, "GET", "/api/stats/my/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// MyOrigins returns the caller's overview split by trade origin
func (s *StatsService) MyOrigins(ctx context.Context) (*OriginBreakdown, error) {
	var breakdown OriginBreakdown
	if err := s.client.doRequest(ctx, "GET", "/api/stats/my/origins", nil, &breakdown); err != nil {
		return nil, err
	}
	return &breakdown, nil
}
