package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/domain/shortlink"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

type ShortLinkHandler struct {
	service   shortlink.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewShortLinkHandler(service shortlink.Service, log *logger.Logger, val *validator.Validator) *ShortLinkHandler {
	return &ShortLinkHandler{service: service, logger: log, validator: val}
}

// Redirect resolves a slug and sends the visitor to the tagged target
// @Summary Follow short link
// @Description Redirect to the target URL with UTM parameters attached
// @Tags ShortLinks
// @Param slug path string true "Link slug"
// @Success 302 "Redirect to target"
// @Failure 404 {object} utils.ErrorResponse "Unknown or inactive slug"
// @Router /go/{slug} [get]
func (h *ShortLinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.Resolve(r.Context(), pathParam(r, "slug"))
	if err != nil {
		utils.WriteAppError(w, err, "Failed to resolve link")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Create registers a short link
// @Summary Create short link
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateShortLinkRequest true "Link definition"
// @Success 201 {object} dto.ShortLinkDTO "Created link"
// @Failure 409 {object} utils.ErrorResponse "Slug already taken"
// @Security BearerAuth
// @Router /admin/links [post]
func (h *ShortLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShortLinkRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	link := &shortlink.ShortLink{
		Slug:      req.Slug,
		TargetURL: req.TargetURL,
		Campaign:  req.Campaign,
		Medium:    req.Medium,
		Source:    req.Source,
	}

	id, err := h.service.Create(r.Context(), link)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to create link")
		return
	}
	link.ID = id

	utils.WriteSuccess(w, http.StatusCreated, dto.ToShortLinkDTO(link))
}

// Get returns one short link with its click count
// @Summary Get short link
// @Tags Admin
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} dto.ShortLinkDTO
// @Failure 404 {object} utils.ErrorResponse "Link not found"
// @Security BearerAuth
// @Router /admin/links/{slug} [get]
func (h *ShortLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.Get(r.Context(), pathParam(r, "slug"))
	if err != nil {
		utils.WriteAppError(w, err, "Failed to get link")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToShortLinkDTO(link))
}

// Deactivate turns a link off without losing its stats
// @Summary Deactivate short link
// @Tags Admin
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} utils.SuccessResponse
// @Security BearerAuth
// @Router /admin/links/{slug}/deactivate [post]
func (h *ShortLinkHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), pathParam(r, "slug")); err != nil {
		utils.WriteAppError(w, err, "Failed to deactivate link")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Link deactivated", nil)
}

// Delete removes a link
// @Summary Delete short link
// @Tags Admin
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} utils.SuccessResponse
// @Security BearerAuth
// @Router /admin/links/{slug} [delete]
func (h *ShortLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), pathParam(r, "slug")); err != nil {
		utils.WriteAppError(w, err, "Failed to delete link")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Link deleted", nil)
}

// List returns short links for the admin surface
// @Summary List short links
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.ShortLinkDTO}
// @Security BearerAuth
// @Router /admin/links [get]
func (h *ShortLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	links, total, err := h.service.List(r.Context(), p.PageSize, p.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list links")
		return
	}

	dtos := make([]*dto.ShortLinkDTO, len(links))
	for i, l := range links {
		dtos[i] = dto.ToShortLinkDTO(l)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}
