package user

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
)

// User represents a registered bot or dashboard user
type User struct {
	ID           int64             `json:"id"`
	TelegramID   int64             `json:"telegram_id,omitempty"`
	Username     string            `json:"username"`
	Email        string            `json:"email,omitempty"`
	PasswordHash string            `json:"-"`
	Role         string            `json:"role"`
	Language     string            `json:"language"`
	Tier         subscription.Tier `json:"tier"`
	FunnelStage  string            `json:"funnel_stage"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Funnel stages in conversion order. A user only moves forward, except the
// drop to churned.
const (
	StageVisitor    = "visitor"
	StageRegistered = "registered"
	StageTrial      = "trial"
	StagePaid       = "paid"
	StageChurned    = "churned"
)

// FunnelStages lists stages in conversion order.
func FunnelStages() []string {
	return []string{StageVisitor, StageRegistered, StageTrial, StagePaid, StageChurned}
}

var stageRank = map[string]int{
	StageVisitor:    0,
	StageRegistered: 1,
	StageTrial:      2,
	StagePaid:       3,
}

// CanAdvanceTo reports whether a funnel move is allowed: forward only, or
// to churned from anywhere.
func CanAdvanceTo(from, to string) bool {
	if to == StageChurned {
		return true
	}
	fr, ok1 := stageRank[from]
	tr, ok2 := stageRank[to]
	return ok1 && ok2 && tr > fr
}
