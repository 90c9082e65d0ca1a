package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	m "github.com/tradepulse/backend/settings/models"
	u "github.com/tradepulse/backend/settings/utils"
)

// In-memory state for the prototype settings surface
var (
	mu            sync.Mutex
	notifications = m.NotificationSettings{
		SignalAlerts:    true,
		ExpiryReminders: true,
		WeeklyDigest:    false,
	}
	account = m.AccountSettings{Language: "en", Timezone: "UTC"}
	apiKeys = []m.APIKey{}
	nextKey = int64(1)
)

// Profile
func GetProfile(c *gin.Context) {
	profile := m.Profile{ID: 1, Username: "demo", Email: "demo@example.com", Tier: "FREE"}
	u.JSON(c, http.StatusOK, profile)
}

func UpdateProfile(c *gin.Context) {
	var req m.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// Account
func GetAccountSettings(c *gin.Context) {
	mu.Lock()
	defer mu.Unlock()
	u.JSON(c, http.StatusOK, account)
}

func UpdateAccountSettings(c *gin.Context) {
	var req m.UpdateAccountSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if req.Language != nil {
		account.Language = *req.Language
	}
	if req.Timezone != nil {
		account.Timezone = *req.Timezone
	}
	u.JSON(c, http.StatusOK, account)
}

func ChangePassword(c *gin.Context) {
	var req m.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "changed"})
}

// Notifications
func GetNotificationSettings(c *gin.Context) {
	mu.Lock()
	defer mu.Unlock()
	u.JSON(c, http.StatusOK, notifications)
}

func UpdateNotificationSettings(c *gin.Context) {
	var req m.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if req.SignalAlerts != nil {
		notifications.SignalAlerts = *req.SignalAlerts
	}
	if req.ExpiryReminders != nil {
		notifications.ExpiryReminders = *req.ExpiryReminders
	}
	if req.WeeklyDigest != nil {
		notifications.WeeklyDigest = *req.WeeklyDigest
	}
	if req.QuietHoursFrom != nil {
		notifications.QuietHoursFrom = *req.QuietHoursFrom
	}
	if req.QuietHoursTo != nil {
		notifications.QuietHoursTo = *req.QuietHoursTo
	}
	u.JSON(c, http.StatusOK, notifications)
}

// Telegram
func GetTelegramLink(c *gin.Context) {
	u.JSON(c, http.StatusOK, m.TelegramLink{Linked: false, LinkCode: "TP-482913"})
}

func UnlinkTelegram(c *gin.Context) {
	u.JSON(c, http.StatusOK, gin.H{"status": "unlinked"})
}

// API Keys
func ListAPIKeys(c *gin.Context) {
	mu.Lock()
	defer mu.Unlock()
	u.JSON(c, http.StatusOK, apiKeys)
}

func CreateAPIKey(c *gin.Context) {
	var req m.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Label == "" {
		u.Error(c, http.StatusBadRequest, "label required")
		return
	}

	mu.Lock()
	defer mu.Unlock()
	key := m.APIKey{
		ID:        nextKey,
		Label:     req.Label,
		Prefix:    fmt.Sprintf("tp_%04d", nextKey),
		CreatedAt: time.Now().UTC(),
	}
	nextKey++
	apiKeys = append(apiKeys, key)

	u.JSON(c, http.StatusCreated, m.CreateAPIKeyResponse{
		Key:    key.Prefix + "_secret_demo",
		APIKey: key,
	})
}

func DeleteAPIKey(c *gin.Context) {
	id := c.Param("id")
	mu.Lock()
	defer mu.Unlock()
	for i, k := range apiKeys {
		if fmt.Sprintf("%d", k.ID) == id {
			apiKeys = append(apiKeys[:i], apiKeys[i+1:]...)
			u.JSON(c, http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	u.Error(c, http.StatusNotFound, "key not found")
}
