package handlers

import (
	"errors"
	"net/http"
	"strings"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/gofiber/fiber/v2"
)

const maxHistoryDays = 3650

// GetSettings - Get current alert settings
// GET /api/settings
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := services.EnsureSettings(h.DB)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(settings)
}

func validateSettings(s models.DashboardSettings) error {
	if _, ok := analysis.ParseSeverity(s.AlertMinSeverity); !ok {
		return errors.New("alert_min_severity must be critical, high, medium or low")
	}
	if s.AlertHistoryDays < 0 || s.AlertHistoryDays > maxHistoryDays {
		return errors.New("alert_history_days out of range")
	}
	return nil
}

// UpdateSettings - Update alert settings
// PUT /api/settings
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var input struct {
		// Discord Webhook
		DiscordWebhookURL string `json:"discord_webhook_url"`
		AlertMinSeverity  string `json:"alert_min_severity"`
		AlertOnNew        bool   `json:"alert_on_new"`
		AlertOnResolved   bool   `json:"alert_on_resolved"`
		DailyReport       bool   `json:"daily_report"`
		// Kafka
		PublishEvents bool `json:"publish_events"`
		// Data Retention
		AlertHistoryDays int `json:"alert_history_days"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	settings, err := services.EnsureSettings(h.DB)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	settings.DiscordWebhookURL = strings.TrimSpace(input.DiscordWebhookURL)
	settings.AlertMinSeverity = strings.ToLower(strings.TrimSpace(input.AlertMinSeverity))
	if settings.AlertMinSeverity == "" {
		settings.AlertMinSeverity = string(analysis.SeverityHigh)
	}
	settings.AlertOnNew = input.AlertOnNew
	settings.AlertOnResolved = input.AlertOnResolved
	settings.DailyReport = input.DailyReport
	settings.PublishEvents = input.PublishEvents
	if input.AlertHistoryDays > 0 {
		settings.AlertHistoryDays = input.AlertHistoryDays
	}

	if err := validateSettings(settings); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Save writes every column, including false booleans
	if err := h.DB.Save(&settings).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Update Webhook Service
	if h.Webhook != nil {
		h.Webhook.SetWebhookURL(settings.DiscordWebhookURL)
	}

	system.Info("Alert settings updated: min severity=%s, history=%d days", settings.AlertMinSeverity, settings.AlertHistoryDays)
	AddEvent("success", "Alert settings applied")

	return c.JSON(fiber.Map{"message": "Settings applied successfully", "settings": settings})
}

// TestWebhook sends a test notification to the configured Discord webhook
// POST /api/webhook/test
func (h *Handler) TestWebhook(c *fiber.Ctx) error {
	if h.Webhook == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "Webhook service not available"})
	}

	// Get webhook URL from DB in case it was just updated
	if settings := services.LoadSettings(h.DB); settings.DiscordWebhookURL != "" {
		h.Webhook.SetWebhookURL(settings.DiscordWebhookURL)
	}

	if !h.Webhook.IsEnabled() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Discord webhook URL not configured"})
	}

	if err := h.Webhook.SendTestAlert(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Test notification sent successfully"})
}

// ReloadData drops the dataset cache, rebuilds the merged series and runs
// the alert monitor once
// POST /api/data/reload
func (h *Handler) ReloadData(c *fiber.Ctx) error {
	h.Data.Reload()

	response := fiber.Map{"message": "Data reloaded"}

	merged, err := h.Data.Merge()
	if err != nil {
		system.Warn("Merge after reload failed: %v", err)
		response["merge_error"] = err.Error()
	} else {
		response["merge"] = merged
	}

	if h.Monitor != nil {
		run, err := h.Monitor.RunOnce(c.UserContext(), services.TriggerManual)
		if err != nil {
			response["monitor_error"] = err.Error()
		}
		response["run"] = run
	}

	AddEvent("info", "Dataset reloaded")
	return c.JSON(response)
}
