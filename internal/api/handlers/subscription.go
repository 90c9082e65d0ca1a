package handlers

import (
	"net/http"
	"strconv"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

type SubscriptionHandler struct {
	service   subscription.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewSubscriptionHandler(service subscription.Service, log *logger.Logger, val *validator.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, logger: log, validator: val}
}

// Plans lists purchasable tiers
// @Summary List plans
// @Description List every tier with its monthly price and rate limit
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} dto.PlanDTO "Available plans"
// @Router /plans [get]
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, dto.Plans())
}

// Current returns the caller's subscription
// @Summary Current subscription
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} dto.SubscriptionDTO "Current subscription"
// @Security BearerAuth
// @Router /subscriptions/current [get]
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	sub, err := h.service.GetForUser(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to get subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// Upgrade switches the caller to a higher tier immediately
// @Summary Upgrade subscription
// @Description Switch to a higher tier now; unused time converts to credit days by price ratio
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body dto.ChangeTierRequest true "Target tier"
// @Success 200 {object} dto.SubscriptionDTO "Upgraded subscription"
// @Failure 409 {object} utils.ErrorResponse "Not an upgrade or not active"
// @Security BearerAuth
// @Router /subscriptions/upgrade [post]
func (h *SubscriptionHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	var req dto.ChangeTierRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sub, err := h.service.Upgrade(r.Context(), userID, subscription.Tier(req.Tier))
	if err != nil {
		utils.WriteAppError(w, err, "Failed to upgrade subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// Downgrade schedules a lower tier for period end
// @Summary Downgrade subscription
// @Description Keep the current tier until expiry, then switch to the lower one
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body dto.ChangeTierRequest true "Target tier"
// @Success 200 {object} dto.SubscriptionDTO "Subscription with pending tier"
// @Failure 409 {object} utils.ErrorResponse "Not a downgrade or not active"
// @Security BearerAuth
// @Router /subscriptions/downgrade [post]
func (h *SubscriptionHandler) Downgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	var req dto.ChangeTierRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sub, err := h.service.Downgrade(r.Context(), userID, subscription.Tier(req.Tier))
	if err != nil {
		utils.WriteAppError(w, err, "Failed to downgrade subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// Cancel turns off auto-renewal
// @Summary Cancel subscription
// @Description Stop renewal at period end; access continues until expiry
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} dto.SubscriptionDTO "Subscription with auto-renewal off"
// @Failure 409 {object} utils.ErrorResponse "Nothing to cancel"
// @Security BearerAuth
// @Router /subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	sub, err := h.service.Cancel(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to cancel subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// List returns subscriptions for the admin surface
// @Summary List subscriptions
// @Tags Admin
// @Produce json
// @Param tier query string false "Filter by tier"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.SubscriptionDTO}
// @Security BearerAuth
// @Router /admin/subscriptions [get]
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	filter := subscription.Filter{
		Tier:   subscription.Tier(r.URL.Query().Get("tier")),
		Status: r.URL.Query().Get("status"),
	}

	subs, total, err := h.service.List(r.Context(), filter, p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list subscriptions")
		return
	}

	dtos := make([]*dto.SubscriptionDTO, len(subs))
	for i, s := range subs {
		dtos[i] = dto.ToSubscriptionDTO(s)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Activate activates a pending subscription, used for manual payments
// @Summary Activate subscription
// @Description Move a pending subscription to active without going through the payment provider
// @Tags Admin
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} dto.SubscriptionDTO "Activated subscription"
// @Failure 409 {object} utils.ErrorResponse "Not pending"
// @Security BearerAuth
// @Router /admin/subscriptions/{id}/activate [post]
func (h *SubscriptionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid subscription ID"))
		return
	}

	sub, err := h.service.Activate(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to activate subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// Extend adds a billing period, used for manual renewals and goodwill credit
// @Summary Extend subscription
// @Tags Admin
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} dto.SubscriptionDTO "Extended subscription"
// @Failure 409 {object} utils.ErrorResponse "Terminal subscription"
// @Security BearerAuth
// @Router /admin/subscriptions/{id}/extend [post]
func (h *SubscriptionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid subscription ID"))
		return
	}

	sub, err := h.service.Extend(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to extend subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}

// AdminCancel turns off auto-renewal on another user's subscription
// @Summary Cancel a user's subscription
// @Tags Admin
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} dto.SubscriptionDTO "Subscription with auto-renewal off"
// @Failure 409 {object} utils.ErrorResponse "Nothing to cancel"
// @Security BearerAuth
// @Router /admin/users/{userId}/subscription/cancel [post]
func (h *SubscriptionHandler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(pathParam(r, "userId"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid user ID"))
		return
	}

	sub, err := h.service.Cancel(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to cancel subscription")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionDTO(sub))
}
