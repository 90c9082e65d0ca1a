package models

import "time"

// ---- Profile ----

type Profile struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	TelegramID int64  `json:"telegramId,omitempty"`
	Tier       string `json:"tier"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// ---- Account Settings ----

type AccountSettings struct {
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

type UpdateAccountSettingsRequest struct {
	Language *string `json:"language"`
	Timezone *string `json:"timezone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ---- Signal Notifications ----

type NotificationSettings struct {
	SignalAlerts    bool   `json:"signalAlerts"`
	ExpiryReminders bool   `json:"expiryReminders"`
	WeeklyDigest    bool   `json:"weeklyDigest"`
	QuietHoursFrom  string `json:"quietHoursFrom,omitempty"`
	QuietHoursTo    string `json:"quietHoursTo,omitempty"`
}

type UpdateNotificationSettingsRequest struct {
	SignalAlerts    *bool   `json:"signalAlerts"`
	ExpiryReminders *bool   `json:"expiryReminders"`
	WeeklyDigest    *bool   `json:"weeklyDigest"`
	QuietHoursFrom  *string `json:"quietHoursFrom"`
	QuietHoursTo    *string `json:"quietHoursTo"`
}

// ---- Telegram Link ----

type TelegramLink struct {
	Linked   bool   `json:"linked"`
	Username string `json:"username,omitempty"`
	LinkCode string `json:"linkCode,omitempty"`
}

// ---- API Keys ----

type APIKey struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateAPIKeyRequest struct {
	Label string `json:"label"`
}

type CreateAPIKeyResponse struct {
	Key    string `json:"key"`
	APIKey APIKey `json:"apiKey"`
}
