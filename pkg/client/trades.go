package client

import (
	"context"
	"fmt"
	"time"
)

// TradeService handles trade ingestion. These endpoints require the
// service API key.
type TradeService struct {
	client *Client
}

// Trade represents a recorded trade outcome
type Trade struct {
	ID        int64     `json:"id"`
	Origin    string    `json:"origin"`
	Result    string    `json:"result"`
	ProfitPct float64   `json:"profitPct"`
	OpenedAt  time.Time `json:"openedAt"`
	ClosedAt  time.Time `json:"closedAt"`
}

// RecordTradeRequest records one closed trade
type RecordTradeRequest struct {
	UserID    int64     `json:"userId"`
	Origin    string    `json:"origin"`
	Result    string    `json:"result"`
	ProfitPct float64   `json:"profitPct"`
	OpenedAt  time.Time `json:"openedAt"`
	ClosedAt  time.Time `json:"closedAt"`
}

// TradePage is one page of the trade list
type TradePage struct {
	Data       []Trade `json:"data"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalItems int64   `json:"total_items"`
	TotalPages int     `json:"total_pages"`
}

// Record stores one closed trade
func (s *TradeService) Record(ctx context.Context, req RecordTradeRequest) (*Trade, error) {
	var t Trade
	if err := s.client.doRequest(ctx, "POST", "/api/trades", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a recorded trade
func (s *TradeService) Delete(ctx context.Context, userID, id int64) error {
	path := fmt.Sprintf("/api/trades/%d/%d", userID, id)
	return s.client.doRequest(ctx, "DELETE", path, nil, nil)
}

// List retrieves a user's trades
func (s *TradeService) List(ctx context.Context, userID int64, page, pageSize int) (*TradePage, error) {
	path := fmt.Sprintf("/api/trades/%d?page=%d&page_size=%d", userID, page, pageSize)
	var result TradePage
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
