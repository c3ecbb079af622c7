package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/gofiber/fiber/v2"
)

// GetChart renders a top-N bar chart as PNG
// GET /api/charts/:metric?region=&limit=10
func (h *Handler) GetChart(c *fiber.Ctx) error {
	metric, ok := models.LookupMetric(c.Params("metric"))
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Unknown metric"})
	}
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}

	png, err := services.BarChart(all, metric, c.Query("region"), c.QueryInt("limit", services.DefaultChartLimit))
	if errors.Is(err, services.ErrNoChartData) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "No data for chart"})
	}
	if err != nil {
		system.Error("Chart render failed for %s: %v", metric.Key, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not render chart"})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "max-age=300")
	return c.Send(png)
}

// ExportWorkbook downloads the edition as an XLSX workbook
// GET /api/export/xlsx?year=
func (h *Handler) ExportWorkbook(c *fiber.Ctx) error {
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}

	var buf bytes.Buffer
	if err := services.WriteWorkbook(&buf, year, all); err != nil {
		system.Error("Workbook export failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not build workbook"})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=factbook-%d.xlsx", year))
	return c.Send(buf.Bytes())
}
