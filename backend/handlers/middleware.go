package handlers

import (
	"errors"
	"time"

	"factbook-dashboard/backend/services"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records count and latency per route template, so
// /api/countries/france and /api/countries/chad share one series.
func RequestMetrics(m *services.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
