package trade

import "time"

// Outcome represents one closed trade recorded for statistics
type Outcome struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Origin    string    `json:"origin"`
	Result    string    `json:"result"`
	ProfitPct float64   `json:"profit_pct"`
	OpenedAt  time.Time `json:"opened_at"`
	ClosedAt  time.Time `json:"closed_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Trade origins
const (
	OriginSignal = "signal"
	OriginManual = "manual"
)

// Trade results
const (
	ResultWin       = "win"
	ResultLoss      = "loss"
	ResultBreakeven = "breakeven"
)

// ValidOrigin reports whether o is a known origin.
func ValidOrigin(o string) bool {
	return o == OriginSignal || o == OriginManual
}

// ValidResult reports whether r is a known result.
func ValidResult(r string) bool {
	return r == ResultWin || r == ResultLoss || r == ResultBreakeven
}

// Filter contains trade filtering options
type Filter struct {
	Origin string
	Result string
	From   *time.Time
	To     *time.Time
}
