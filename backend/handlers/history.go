package handlers

import (
	"net/http"
	"time"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"

	"github.com/gofiber/fiber/v2"
)

// GetAlertHistory returns persisted alert events, newest first
// GET /api/alerts/history?page=1&limit=50&status=open|resolved&severity=&country=
func (h *Handler) GetAlertHistory(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	status := c.Query("status", "")
	severity := c.Query("severity", "")
	country := c.Query("country", "")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit

	query := h.DB.Model(&models.AlertEvent{})

	switch status {
	case "":
	case "open":
		query = query.Where("resolved = ?", false)
	case "resolved":
		query = query.Where("resolved = ?", true)
	default:
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}
	if severity != "" {
		sev, ok := analysis.ParseSeverity(severity)
		if !ok {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid severity"})
		}
		query = query.Where("severity = ?", string(sev))
	}
	if country != "" {
		query = query.Where("country = ?", country)
	}

	var total int64
	query.Count(&total)

	var events []models.AlertEvent
	if err := query.Order("first_seen DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"page":   page,
		"limit":  limit,
		"total":  total,
		"events": events,
	})
}

// GetAlertStats returns aggregated alert history statistics
// GET /api/alerts/stats
func (h *Handler) GetAlertStats(c *fiber.Ctx) error {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -7)

	stats := models.AlertStats{BySeverity: make(map[string]int64)}

	h.DB.Model(&models.AlertEvent{}).Where("resolved = ?", false).Count(&stats.Open)
	h.DB.Model(&models.AlertEvent{}).Where("resolved = ?", true).Count(&stats.Resolved)
	h.DB.Model(&models.AlertEvent{}).Where("first_seen >= ?", todayStart).Count(&stats.TodayNew)
	h.DB.Model(&models.AlertEvent{}).Where("first_seen >= ?", weekStart).Count(&stats.WeekNew)

	for _, sev := range analysis.Severities {
		var n int64
		h.DB.Model(&models.AlertEvent{}).Where("resolved = ? AND severity = ?", false, string(sev)).Count(&n)
		stats.BySeverity[string(sev)] = n
	}

	// Top region among open alerts
	var topRegion struct {
		Region string
		Count  int64
	}
	h.DB.Model(&models.AlertEvent{}).
		Select("region, COUNT(*) as count").
		Where("resolved = ?", false).
		Group("region").
		Order("count DESC").
		Limit(1).
		Scan(&topRegion)
	stats.TopRegion = topRegion.Region

	// Top anomaly type among open alerts
	var topType struct {
		Type  string
		Count int64
	}
	h.DB.Model(&models.AlertEvent{}).
		Select("type, COUNT(*) as count").
		Where("resolved = ?", false).
		Group("type").
		Order("count DESC").
		Limit(1).
		Scan(&topType)
	stats.TopType = topType.Type

	var last models.MonitorRun
	if err := h.DB.Order("started_at DESC").Limit(1).Find(&last).Error; err == nil && last.ID != 0 {
		stats.LastRun = &last
	}

	return c.JSON(stats)
}
