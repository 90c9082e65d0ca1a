package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

type AuthHandler struct {
	users     user.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewAuthHandler(users user.Service, log *logger.Logger, val *validator.Validator) *AuthHandler {
	return &AuthHandler{users: users, logger: log, validator: val}
}

// Register creates a new account
// @Summary Register
// @Description Create a new user account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.UserDTO "Created user"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email or telegram account taken"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password, req.TelegramID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to register user")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToUserDTO(u))
}

// Login authenticates a user
// @Summary Login
// @Description Verify credentials and mint a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse "Token pair and user"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	u, pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to login")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.ToUserDTO(u),
	})
}

// Refresh exchanges a refresh token for a new pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse "New token pair"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to refresh tokens")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserDTO "Current user"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to get user")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToUserDTO(u))
}

// SetLanguage stores the user's preferred language
// @Summary Set language
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SetLanguageRequest true "Language"
// @Success 200 {object} utils.SuccessResponse
// @Security BearerAuth
// @Router /auth/language [put]
func (h *AuthHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	var req dto.SetLanguageRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.users.SetLanguage(r.Context(), userID, req.Language); err != nil {
		utils.WriteAppError(w, err, "Failed to set language")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Language updated", nil)
}
