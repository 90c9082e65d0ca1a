package user

import (
	"context"

	"github.com/tradepulse/backend/internal/auth"
	"github.com/tradepulse/backend/internal/domain/subscription"
)

// Service defines the interface for user business logic
type Service interface {
	// Register creates a user with a bcrypt-hashed password
	Register(ctx context.Context, username, email, password string, telegramID int64) (*User, error)

	// Login verifies credentials and mints a token pair
	Login(ctx context.Context, email, password string) (*User, auth.TokenPair, error)

	// Refresh exchanges a refresh token for a new pair
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByTelegramID retrieves a user by telegram ID
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)

	// SetTier updates the denormalized tier on the user row
	SetTier(ctx context.Context, userID int64, tier subscription.Tier) error

	// AdvanceFunnel moves the user forward in the conversion funnel
	AdvanceFunnel(ctx context.Context, userID int64, stage string) error

	// SetLanguage sets the user's preferred language
	SetLanguage(ctx context.Context, userID int64, lang string) error
}
