package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradepulse/backend/internal/auth"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	repo    user.Repository
	authCfg config.AuthConfig
	logger  *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, authCfg config.AuthConfig, log *logger.Logger) user.Service {
	return &UserService{
		repo:    repo,
		authCfg: authCfg,
		logger:  log,
	}
}

// Register creates a user with a bcrypt-hashed password
func (s *UserService) Register(ctx context.Context, username, email, password string, telegramID int64) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email != "" {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return nil, errors.Conflict("email already registered")
		}
	}
	if telegramID != 0 {
		if _, err := s.repo.GetByTelegramID(ctx, telegramID); err == nil {
			return nil, errors.Conflict("telegram account already registered")
		}
	}

	var hash string
	if password != "" {
		cost := s.authCfg.BCryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, errors.Internal("failed to hash password", err)
		}
		hash = string(h)
	}

	u := &user.User{
		TelegramID:   telegramID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Language:     "en",
		Tier:         subscription.TierFree,
		FunnelStage:  user.StageRegistered,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("User registered")

	return u, nil
}

// Login verifies credentials and mints a token pair
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Unauthorized("invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, auth.TokenPair{}, errors.Unauthorized("invalid credentials")
	}

	pair, err := auth.MintTokens(u.ID, u.Email, u.Role, s.authCfg.JWTSecret,
		s.authCfg.AccessTokenExpiry, s.authCfg.RefreshTokenExpiry)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Internal("failed to mint tokens", err)
	}

	return u, pair, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := auth.ParseClaims(refreshToken, s.authCfg.JWTSecret)
	if err != nil {
		return auth.TokenPair{}, errors.Unauthorized("invalid refresh token")
	}

	// Re-read the user so revoked or role-changed accounts do not keep
	// minting tokens off stale claims.
	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.TokenPair{}, errors.Unauthorized("invalid refresh token")
	}

	pair, err := auth.MintTokens(u.ID, u.Email, u.Role, s.authCfg.JWTSecret,
		s.authCfg.AccessTokenExpiry, s.authCfg.RefreshTokenExpiry)
	if err != nil {
		return auth.TokenPair{}, errors.Internal("failed to mint tokens", err)
	}

	return pair, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByTelegramID retrieves a user by telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// SetTier updates the denormalized tier on the user row
func (s *UserService) SetTier(ctx context.Context, userID int64, tier subscription.Tier) error {
	if !tier.Valid() {
		return errors.BadRequest("unknown tier")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.Tier = tier
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to set user tier")
		return err
	}

	return nil
}

// AdvanceFunnel moves the user forward in the conversion funnel
func (s *UserService) AdvanceFunnel(ctx context.Context, userID int64, stage string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CanAdvanceTo(u.FunnelStage, stage) {
		return errors.InvalidTransition("funnel stage can only move forward")
	}

	u.FunnelStage = stage
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to advance funnel stage")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"stage":   stage,
	}).Info("Funnel stage advanced")

	return nil
}

// SetLanguage sets the user's preferred language
func (s *UserService) SetLanguage(ctx context.Context, userID int64, lang string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.Language = lang
	return s.repo.Update(ctx, u)
}
