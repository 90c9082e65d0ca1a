package dto

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/user"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          int64     `json:"id"`
	TelegramID  int64     `json:"telegramId,omitempty"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	Language    string    `json:"language"`
	Tier        string    `json:"tier"`
	FunnelStage string    `json:"funnelStage"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToUserDTO converts a domain user to its API representation
func ToUserDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:          u.ID,
		TelegramID:  u.TelegramID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Language:    u.Language,
		Tier:        string(u.Tier),
		FunnelStage: u.FunnelStage,
		CreatedAt:   u.CreatedAt,
	}
}

// SetLanguageRequest represents a language preference change
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required,oneof=en ru"`
}

// AdvanceFunnelRequest moves a user forward in the conversion funnel
type AdvanceFunnelRequest struct {
	Stage string `json:"stage" validate:"required,oneof=visitor registered trial paid churned"`
}
