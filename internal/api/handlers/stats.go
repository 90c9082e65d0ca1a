package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/domain/stats"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
)

type StatsHandler struct {
	service stats.Service
	logger  *logger.Logger
}

func NewStatsHandler(service stats.Service, log *logger.Logger) *StatsHandler {
	return &StatsHandler{service: service, logger: log}
}

// GlobalOverview returns the public track record
// @Summary Global trading overview
// @Description Aggregated statistics over every recorded trade
// @Tags Stats
// @Produce json
// @Success 200 {object} stats.Overview
// @Router /stats/trading/overview [get]
func (h *StatsHandler) GlobalOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.GlobalOverview(r.Context())
	if err != nil {
		utils.WriteAppError(w, err, "Failed to compute overview")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, overview)
}

// GlobalOrigins splits the public track record by trade origin
// @Summary Global stats by origin
// @Description Aggregated statistics computed separately for signal and manual trades
// @Tags Stats
// @Produce json
// @Success 200 {object} stats.OriginBreakdown
// @Router /stats/trading/origins [get]
func (h *StatsHandler) GlobalOrigins(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.service.GlobalOrigins(r.Context())
	if err != nil {
		utils.WriteAppError(w, err, "Failed to compute origin breakdown")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, breakdown)
}

// UserOverview returns the caller's trading overview
// @Summary My trading overview
// @Tags Stats
// @Produce json
// @Success 200 {object} stats.Overview
// @Security BearerAuth
// @Router /stats/my/overview [get]
func (h *StatsHandler) UserOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	overview, err := h.service.UserOverview(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to compute overview")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, overview)
}

// UserOrigins splits the caller's overview by trade origin
// @Summary My stats by origin
// @Description Overview computed separately for signal and manual trades
// @Tags Stats
// @Produce json
// @Success 200 {object} stats.OriginBreakdown
// @Security BearerAuth
// @Router /stats/my/origins [get]
func (h *StatsHandler) UserOrigins(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	breakdown, err := h.service.UserOrigins(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to compute origin breakdown")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, breakdown)
}

// Funnel returns the conversion funnel report
// @Summary Conversion funnel
// @Tags Admin
// @Produce json
// @Success 200 {object} stats.FunnelReport
// @Security BearerAuth
// @Router /admin/stats/funnel [get]
func (h *StatsHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Funnel(r.Context())
	if err != nil {
		utils.WriteAppError(w, err, "Failed to build funnel report")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, report)
}

// Revenue returns the revenue report
// @Summary Revenue report
// @Tags Admin
// @Produce json
// @Success 200 {object} stats.RevenueReport
// @Security BearerAuth
// @Router /admin/stats/revenue [get]
func (h *StatsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Revenue(r.Context())
	if err != nil {
		utils.WriteAppError(w, err, "Failed to build revenue report")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, report)
}
