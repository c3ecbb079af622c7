package models

import (
	"time"
)

type Admin struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"unique;not null" json:"username"`
	Password          string     `gorm:"not null" json:"-"` // Stored hashed
	CreatedAt         time.Time  `json:"created_at"`
	FailedAttempts    int        `gorm:"default:0" json:"-"`
	LastFailedAttempt *time.Time `json:"-"`
	LockedUntil       *time.Time `json:"-"`
}

// DashboardSettings is the singleton (ID 1) alerting configuration
type DashboardSettings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Discord Webhook Notifications
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty"`
	AlertMinSeverity  string `gorm:"default:'high'" json:"alert_min_severity"` // critical, high, medium, low
	AlertOnNew        bool   `gorm:"default:true" json:"alert_on_new"`
	AlertOnResolved   bool   `gorm:"default:false" json:"alert_on_resolved"`
	DailyReport       bool   `gorm:"default:true" json:"daily_report"`

	// Kafka fan-out of anomaly events (brokers come from process config)
	PublishEvents bool `gorm:"default:true" json:"publish_events"`

	// Data Retention
	AlertHistoryDays int `gorm:"default:90" json:"alert_history_days"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings is used when the settings row has not been created yet
func DefaultSettings() DashboardSettings {
	return DashboardSettings{
		ID:               1,
		AlertMinSeverity: "high",
		AlertOnNew:       true,
		DailyReport:      true,
		PublishEvents:    true,
		AlertHistoryDays: 90,
	}
}
