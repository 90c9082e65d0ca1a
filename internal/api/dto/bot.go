package dto

// BotCommandRequest relays one chat command from the bot process
type BotCommandRequest struct {
	TelegramID int64  `json:"telegramId" validate:"required"`
	Username   string `json:"username,omitempty" validate:"omitempty,max=64"`
	Text       string `json:"text" validate:"required,max=4096"`
}

// BotCommandResponse carries the localized reply text
type BotCommandResponse struct {
	Reply string `json:"reply"`
}
