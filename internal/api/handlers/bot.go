package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/services"
)

type BotHandler struct {
	service   *services.BotService
	logger    *logger.Logger
	validator *validator.Validator
}

func NewBotHandler(service *services.BotService, log *logger.Logger, val *validator.Validator) *BotHandler {
	return &BotHandler{service: service, logger: log, validator: val}
}

// Command relays one chat command and returns the localized reply
// @Summary Handle bot command
// @Description Dispatch a Telegram command for a user and return the reply text
// @Tags Bot
// @Accept json
// @Produce json
// @Param request body dto.BotCommandRequest true "Command"
// @Success 200 {object} dto.BotCommandResponse "Reply text"
// @Security ApiKeyAuth
// @Router /bot/command [post]
func (h *BotHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req dto.BotCommandRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	reply, err := h.service.HandleCommand(r.Context(), req.TelegramID, req.Username, req.Text)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to handle command")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.BotCommandResponse{Reply: reply})
}
