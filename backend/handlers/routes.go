package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// SetupRoutes registers /metrics and the /api tree on app.
func SetupRoutes(app *fiber.App, h *Handler) {
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}

	api := app.Group("/api")

	// ===== Public Routes (No Auth Required) =====
	api.Post("/login", h.Login)

	// Countries
	api.Get("/countries", h.GetCountries)
	api.Get("/countries/timeseries", h.GetTimeSeries)
	api.Get("/countries/:slug", h.GetCountry)
	api.Get("/countries/:slug/profile", h.GetCountryProfile)
	api.Get("/years", h.GetYears)

	// Dashboard views
	api.Get("/dashboard", h.GetDashboard)
	api.Get("/records", h.GetRecords)
	api.Get("/regions", h.GetRegions)
	api.Get("/regions/:region", h.GetRegion)
	api.Get("/compare", h.GetCompare)
	api.Get("/globe", h.GetGlobe)
	api.Get("/trends/changes", h.GetChanges)

	// Analysis
	api.Get("/analysis/risk", h.GetRiskProfiles)
	api.Get("/analysis/regions", h.GetRegionalStats)

	// Alerts
	api.Get("/alerts", h.GetAlerts)
	api.Get("/alerts/history", h.GetAlertHistory)
	api.Get("/alerts/stats", h.GetAlertStats)

	// Reports
	api.Get("/charts/:metric", h.GetChart)
	api.Get("/export/xlsx", h.ExportWorkbook)

	// System Status
	api.Get("/status", h.GetSystemStatus)

	// ===== Protected Routes (JWT Required) =====
	protected := api.Group("", JWTAuthMiddleware(h.jwtSecret))

	// Auth
	protected.Put("/auth/password", h.ChangePassword)
	protected.Get("/events", h.GetEvents)

	// User Management
	protected.Get("/users", h.GetUsers)
	protected.Post("/users", h.CreateUser)
	protected.Delete("/users/:id", h.DeleteUser)

	// Country Groups
	protected.Get("/groups", h.GetCountryGroups)
	protected.Post("/groups", h.CreateCountryGroup)
	protected.Put("/groups/:id", h.UpdateCountryGroup)
	protected.Delete("/groups/:id", h.DeleteCountryGroup)
	protected.Get("/groups/:id/compare", h.CompareCountryGroup)

	// Alert Settings
	protected.Get("/settings", h.GetSettings)
	protected.Put("/settings", h.UpdateSettings)

	// Data
	protected.Post("/data/reload", h.ReloadData)

	// Webhook
	protected.Post("/webhook/test", h.TestWebhook)

	// Backup & Restore
	protected.Get("/backup/export", h.ExportConfig)
	protected.Post("/backup/import", h.ImportConfig)
}
