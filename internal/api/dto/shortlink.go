package dto

import (
	"time"

	"github.com/tradepulse/backend/internal/domain/shortlink"
)

// CreateShortLinkRequest creates a marketing short link
type CreateShortLinkRequest struct {
	Slug      string `json:"slug" validate:"required,min=3,max=32"`
	TargetURL string `json:"targetUrl" validate:"required,url"`
	Campaign  string `json:"campaign,omitempty" validate:"omitempty,max=64"`
	Medium    string `json:"medium,omitempty" validate:"omitempty,max=64"`
	Source    string `json:"source,omitempty" validate:"omitempty,max=64"`
}

// ShortLinkDTO represents a short link in API responses
type ShortLinkDTO struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	TargetURL string    `json:"targetUrl"`
	Campaign  string    `json:"campaign,omitempty"`
	Medium    string    `json:"medium"`
	Source    string    `json:"source"`
	Clicks    int64     `json:"clicks"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToShortLinkDTO converts a domain short link to its API representation
func ToShortLinkDTO(l *shortlink.ShortLink) *ShortLinkDTO {
	return &ShortLinkDTO{
		ID:        l.ID,
		Slug:      l.Slug,
		TargetURL: l.TargetURL,
		Campaign:  l.Campaign,
		Medium:    l.Medium,
		Source:    l.Source,
		Clicks:    l.Clicks,
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
	}
}
