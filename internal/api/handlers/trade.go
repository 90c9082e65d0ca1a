package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

// TradeHandler serves two surfaces: the ingestion endpoints used by the
// signal pipeline, which sit behind the service API key and name their
// user explicitly, and the /my endpoints for dashboard users on JWT.
type TradeHandler struct {
	service   trade.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewTradeHandler(service trade.Service, log *logger.Logger, val *validator.Validator) *TradeHandler {
	return &TradeHandler{service: service, logger: log, validator: val}
}

// Record stores one closed trade
// @Summary Record trade
// @Description Record a closed trade outcome for a user
// @Tags Trades
// @Accept json
// @Produce json
// @Param request body dto.RecordTradeRequest true "Trade outcome"
// @Success 201 {object} dto.TradeDTO "Recorded trade"
// @Failure 400 {object} utils.ErrorResponse "Invalid outcome"
// @Security ApiKeyAuth
// @Router /trades [post]
func (h *TradeHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTradeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	o := &trade.Outcome{
		UserID:    req.UserID,
		Origin:    req.Origin,
		Result:    req.Result,
		ProfitPct: req.ProfitPct,
		OpenedAt:  req.OpenedAt,
		ClosedAt:  req.ClosedAt,
	}

	id, err := h.service.Record(r.Context(), o)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to record trade")
		return
	}
	o.ID = id

	utils.WriteSuccess(w, http.StatusCreated, dto.ToTradeDTO(o))
}

// Delete removes a recorded trade
// @Summary Delete trade
// @Tags Trades
// @Produce json
// @Param userId path int true "User ID"
// @Param id path int true "Trade ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse "Trade not found"
// @Security ApiKeyAuth
// @Router /trades/{userId}/{id} [delete]
func (h *TradeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(pathParam(r, "userId"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid user ID"))
		return
	}
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid trade ID"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		utils.WriteAppError(w, err, "Failed to delete trade")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Trade deleted", nil)
}

// List returns a user's trades
// @Summary List trades
// @Tags Trades
// @Produce json
// @Param userId path int true "User ID"
// @Param origin query string false "Filter by origin"
// @Param result query string false "Filter by result"
// @Param from query string false "Closed-at lower bound (RFC 3339)"
// @Param to query string false "Closed-at upper bound (RFC 3339)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.TradeDTO}
// @Security ApiKeyAuth
// @Router /trades/{userId} [get]
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(pathParam(r, "userId"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid user ID"))
		return
	}

	filter := trade.Filter{
		Origin: r.URL.Query().Get("origin"),
		Result: r.URL.Query().Get("result"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("Invalid from timestamp"))
			return
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("Invalid to timestamp"))
			return
		}
		filter.To = &t
	}

	p := utils.ParsePaginationParams(r)
	outcomes, total, err := h.service.List(r.Context(), userID, filter, p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list trades")
		return
	}

	dtos := make([]*dto.TradeDTO, len(outcomes))
	for i, o := range outcomes {
		dtos[i] = dto.ToTradeDTO(o)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// RecordMine stores one closed manual trade for the caller
// @Summary Record my trade
// @Tags Trades
// @Accept json
// @Produce json
// @Param request body dto.RecordOwnTradeRequest true "Trade outcome"
// @Success 201 {object} dto.TradeDTO "Recorded trade"
// @Failure 400 {object} utils.ErrorResponse "Invalid outcome"
// @Security BearerAuth
// @Router /trades/my [post]
func (h *TradeHandler) RecordMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	var req dto.RecordOwnTradeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	o := &trade.Outcome{
		UserID:    userID,
		Origin:    req.Origin,
		Result:    req.Result,
		ProfitPct: req.ProfitPct,
		OpenedAt:  req.OpenedAt,
		ClosedAt:  req.ClosedAt,
	}

	id, err := h.service.Record(r.Context(), o)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to record trade")
		return
	}
	o.ID = id

	utils.WriteSuccess(w, http.StatusCreated, dto.ToTradeDTO(o))
}

// ListMine returns the caller's trades
// @Summary List my trades
// @Tags Trades
// @Produce json
// @Param origin query string false "Filter by origin"
// @Param result query string false "Filter by result"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.TradeDTO}
// @Security BearerAuth
// @Router /trades/my [get]
func (h *TradeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	filter := trade.Filter{
		Origin: r.URL.Query().Get("origin"),
		Result: r.URL.Query().Get("result"),
	}

	p := utils.ParsePaginationParams(r)
	outcomes, total, err := h.service.List(r.Context(), userID, filter, p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list trades")
		return
	}

	dtos := make([]*dto.TradeDTO, len(outcomes))
	for i, o := range outcomes {
		dtos[i] = dto.ToTradeDTO(o)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// DeleteMine removes one of the caller's trades
// @Summary Delete my trade
// @Tags Trades
// @Produce json
// @Param id path int true "Trade ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse "Trade not found"
// @Security BearerAuth
// @Router /trades/my/{id} [delete]
func (h *TradeHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid trade ID"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		utils.WriteAppError(w, err, "Failed to delete trade")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Trade deleted", nil)
}
