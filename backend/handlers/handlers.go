package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	DB      *gorm.DB
	Data    *services.Dataset
	Webhook *services.WebhookService
	Monitor *services.AlertMonitor
	GeoIP   *services.GeoIPService
	Metrics *services.Metrics

	Year      int
	jwtSecret []byte
	startedAt time.Time
}

func NewHandler(db *gorm.DB, data *services.Dataset, webhook *services.WebhookService, monitor *services.AlertMonitor, cfg system.Config) *Handler {
	return &Handler{
		DB:        db,
		Data:      data,
		Webhook:   webhook,
		Monitor:   monitor,
		Year:      cfg.DefaultYear,
		jwtSecret: []byte(cfg.JWTSecret),
		startedAt: time.Now(),
	}
}

// year reads ?year=, falling back to the default edition
func (h *Handler) year(c *fiber.Ctx) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return h.Year, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fiber.NewError(http.StatusBadRequest, "Invalid year")
	}
	return year, nil
}

// edition loads every record of the requested year.
func (h *Handler) edition(c *fiber.Ctx) ([]*models.Country, int, error) {
	year, err := h.year(c)
	if err != nil {
		return nil, 0, err
	}
	all, err := h.Data.All(year)
	if err != nil {
		return nil, year, dataError(err)
	}
	return all, year, nil
}

// dataError maps a dataset error onto the response status.
func dataError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Data not found")
	}
	system.Error("Data access failed: %v", err)
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}

// errorJSON writes err as {"error": message}, using the status of a *fiber.Error.
func errorJSON(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
