package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

const maxWebhookBody = int64(65536)

type PaymentHandler struct {
	service       payment.Service
	webhookSecret string
	logger        *logger.Logger
	validator     *validator.Validator
}

func NewPaymentHandler(service payment.Service, webhookSecret string, log *logger.Logger, val *validator.Validator) *PaymentHandler {
	return &PaymentHandler{service: service, webhookSecret: webhookSecret, logger: log, validator: val}
}

// CreateInvoice starts a payment for a tier period
// @Summary Create invoice
// @Description Create a pending payment; the stripe provider returns a checkout URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.CreateInvoiceRequest true "Tier and provider"
// @Success 201 {object} dto.PaymentDTO "Pending payment"
// @Failure 409 {object} utils.ErrorResponse "Active paid subscription exists"
// @Failure 502 {object} utils.ErrorResponse "Payment provider error"
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	var req dto.CreateInvoiceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	p, err := h.service.CreateInvoice(r.Context(), userID, subscription.Tier(req.Tier), req.Provider)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to create invoice")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.ToPaymentDTO(p))
}

// Get returns one payment
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentDTO
// @Failure 404 {object} utils.ErrorResponse "Payment not found"
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	p, err := h.service.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		utils.WriteAppError(w, err, "Failed to get payment")
		return
	}

	role, _ := middleware.GetUserRole(r)
	if p.UserID != userID && role != "admin" {
		utils.WriteError(w, errors.NotFound("payment"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToPaymentDTO(p))
}

// List returns the caller's payments
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.PaymentDTO}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Missing authentication"))
		return
	}

	p := utils.ParsePaginationParams(r)
	payments, total, err := h.service.List(r.Context(), payment.Filter{UserID: userID}, p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list payments")
		return
	}

	dtos := make([]*dto.PaymentDTO, len(payments))
	for i, pm := range payments {
		dtos[i] = dto.ToPaymentDTO(pm)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// AdminList returns payments across all users with filters
// @Summary List all payments
// @Tags Admin
// @Produce json
// @Param status query string false "Filter by status"
// @Param provider query string false "Filter by provider"
// @Param from query string false "Created-at lower bound (RFC 3339)"
// @Param to query string false "Created-at upper bound (RFC 3339)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.PaymentDTO}
// @Security BearerAuth
// @Router /admin/payments [get]
func (h *PaymentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := payment.Filter{
		Status:   r.URL.Query().Get("status"),
		Provider: r.URL.Query().Get("provider"),
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
	payments, total, err := h.service.List(r.Context(), filter, p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list payments")
		return
	}

	dtos := make([]*dto.PaymentDTO, len(payments))
	for i, pm := range payments {
		dtos[i] = dto.ToPaymentDTO(pm)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Refund refunds a completed payment
// @Summary Refund payment
// @Tags Admin
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "Payment is not refundable"
// @Security BearerAuth
// @Router /admin/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refund(r.Context(), pathParam(r, "id")); err != nil {
		utils.WriteAppError(w, err, "Failed to refund payment")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Payment refunded", nil)
}

// Stats returns the aggregated payments view
// @Summary Payment stats
// @Tags Admin
// @Produce json
// @Success 200 {object} payment.Stats
// @Security BearerAuth
// @Router /admin/payments/stats [get]
func (h *PaymentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), payment.Filter{})
	if err != nil {
		utils.WriteAppError(w, err, "Failed to aggregate payments")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, stats)
}

// Webhook handles provider event callbacks
// @Summary Provider webhook
// @Description Verify and apply a payment provider event
// @Tags Payments
// @Accept json
// @Success 200
// @Failure 400 {object} utils.ErrorResponse "Bad payload or signature"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read webhook body"))
		return
	}

	// With a configured secret the Stripe signature is mandatory.
	if h.webhookSecret != "" {
		if _, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret); err != nil {
			h.logger.ErrorWithErr(err, "Webhook signature verification failed")
			utils.WriteError(w, errors.Unauthorized("Invalid webhook signature"))
			return
		}
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid webhook payload"))
		return
	}

	if err := h.service.HandleProviderEvent(r.Context(), event.Data.Object.ID, event.Type); err != nil {
		// Unknown sessions are acknowledged so the provider stops
		// retrying events for payments we never created.
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrCodeNotFound {
			h.logger.Warnf("Webhook for unknown session %s", event.Data.Object.ID)
			w.WriteHeader(http.StatusOK)
			return
		}
		utils.WriteAppError(w, err, "Failed to handle webhook")
		return
	}

	w.WriteHeader(http.StatusOK)
}
