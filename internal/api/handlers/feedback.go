package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/domain/feedback"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

type FeedbackHandler struct {
	service   feedback.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewFeedbackHandler(service feedback.Service, log *logger.Logger, val *validator.Validator) *FeedbackHandler {
	return &FeedbackHandler{service: service, logger: log, validator: val}
}

// Submit stores a feedback entry
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body dto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} feedback.Feedback "Stored feedback"
// @Failure 400 {object} utils.ErrorResponse "Invalid category or message"
// @Security ApiKeyAuth
// @Router /feedback/submit [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitFeedbackRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	f := &feedback.Feedback{
		UserID:   req.UserID,
		Category: req.Category,
		Message:  req.Message,
	}

	id, err := h.service.Submit(r.Context(), f)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to submit feedback")
		return
	}
	f.ID = id

	utils.WriteSuccess(w, http.StatusCreated, f)
}

// List returns feedback for the admin surface
// @Summary List feedback
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]feedback.Feedback}
// @Security BearerAuth
// @Router /admin/feedback [get]
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	entries, total, err := h.service.List(r.Context(), p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list feedback")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(entries, p.Page, p.PageSize, total))
}
