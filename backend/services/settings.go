package services

import (
	"errors"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/system"

	"gorm.io/gorm"
)

// LoadSettings returns the settings row, or the defaults when it does not exist yet.
func LoadSettings(db *gorm.DB) models.DashboardSettings {
	var settings models.DashboardSettings
	if err := db.First(&settings, 1).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			system.Warn("Failed to load dashboard settings: %v", err)
		}
		return models.DefaultSettings()
	}
	return settings
}

// EnsureSettings creates the settings row with defaults when missing.
func EnsureSettings(db *gorm.DB) (models.DashboardSettings, error) {
	settings := models.DefaultSettings()
	if err := db.FirstOrCreate(&settings, models.DashboardSettings{ID: 1}).Error; err != nil {
		return models.DashboardSettings{}, err
	}
	return settings, nil
}
