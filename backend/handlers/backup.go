package handlers

import (
	"net/http"
	"time"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const backupVersion = "1.0"

// BackupData represents the saved groups and alert settings for export/import
type BackupData struct {
	ExportedAt time.Time                `json:"exported_at"`
	Version    string                   `json:"version"`
	Groups     []models.CountryGroup    `json:"groups"`
	Settings   models.DashboardSettings `json:"settings"`
}

// ExportConfig exports all configuration as JSON
// GET /api/backup/export
func (h *Handler) ExportConfig(c *fiber.Ctx) error {
	backup := BackupData{
		ExportedAt: time.Now(),
		Version:    backupVersion,
	}

	if err := h.DB.Order("id ASC").Find(&backup.Groups).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	backup.Settings = services.LoadSettings(h.DB)
	// The webhook URL is a credential
	backup.Settings.DiscordWebhookURL = ""

	// Set filename for download
	filename := "factbook-backup-" + time.Now().Format("2006-01-02") + ".json"
	c.Set("Content-Disposition", "attachment; filename="+filename)
	c.Set("Content-Type", "application/json")

	AddEvent("success", "Configuration exported")

	return c.JSON(backup)
}

// ImportConfig imports configuration from JSON
// POST /api/backup/import
func (h *Handler) ImportConfig(c *fiber.Ctx) error {
	var backup BackupData
	if err := c.BodyParser(&backup); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid backup file format"})
	}

	// Validate version
	if backup.Version == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid backup file: missing version"})
	}
	if backup.Settings.ID > 0 {
		if err := validateSettings(backup.Settings); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	summary := fiber.Map{
		"groups":   len(backup.Groups),
		"settings": backup.Settings.ID > 0,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// Groups are matched by name; builtin flags are never imported
		for _, group := range backup.Groups {
			if group.Name == "" {
				continue
			}
			var existing models.CountryGroup
			if err := tx.Where("name = ?", group.Name).First(&existing).Error; err == nil {
				existing.Description = group.Description
				existing.Color = group.Color
				existing.Countries = models.NormalizeCountries(group.Countries)
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				continue
			}
			newGroup := models.CountryGroup{
				Name:        group.Name,
				Description: group.Description,
				Countries:   models.NormalizeCountries(group.Countries),
				Color:       group.Color,
			}
			if err := tx.Create(&newGroup).Error; err != nil {
				return err
			}
		}

		if backup.Settings.ID == 0 {
			return nil
		}
		existing, err := services.EnsureSettings(tx)
		if err != nil {
			return err
		}
		// Copy relevant fields (not the webhook URL)
		existing.AlertMinSeverity = backup.Settings.AlertMinSeverity
		existing.AlertOnNew = backup.Settings.AlertOnNew
		existing.AlertOnResolved = backup.Settings.AlertOnResolved
		existing.DailyReport = backup.Settings.DailyReport
		existing.PublishEvents = backup.Settings.PublishEvents
		existing.AlertHistoryDays = backup.Settings.AlertHistoryDays
		return tx.Save(&existing).Error
	})
	if err != nil {
		system.Error("Configuration import failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Import failed: " + err.Error()})
	}

	system.Info("Configuration imported: %v", summary)
	AddEvent("success", "Configuration imported from backup")

	return c.JSON(fiber.Map{
		"message": "Configuration imported successfully",
		"summary": summary,
	})
}
