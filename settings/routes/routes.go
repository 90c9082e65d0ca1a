package routes

import (
	"github.com/gin-gonic/gin"

	c "github.com/tradepulse/backend/settings/controllers"
)

func RegisterSettingsRoutes(r *gin.Engine) {
	// Profile
	r.GET("/profile", c.GetProfile)
	r.PUT("/profile", c.UpdateProfile)

	// Account
	r.GET("/account/settings", c.GetAccountSettings)
	r.PUT("/account/settings", c.UpdateAccountSettings)
	r.POST("/account/password", c.ChangePassword)

	// Signal notifications
	r.GET("/notifications/settings", c.GetNotificationSettings)
	r.PUT("/notifications/settings", c.UpdateNotificationSettings)

	// Telegram link
	r.GET("/telegram/link", c.GetTelegramLink)
	r.POST("/telegram/unlink", c.UnlinkTelegram)

	// API keys
	r.GET("/security/api-keys", c.ListAPIKeys)
	r.POST("/security/api-key", c.CreateAPIKey)
	r.DELETE("/security/api-key/:id", c.DeleteAPIKey)
}
