package handlers

import (
	"net/http"
	"strings"

	"factbook-dashboard/backend/models"

	"github.com/gofiber/fiber/v2"
)

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Countries   string `json:"countries"`
	Color       string `json:"color"`
}

// unknownMembers lists slugs missing from the default edition's index.
// Members are not checked when no index is available.
func (h *Handler) unknownMembers(slugs []string) []string {
	idx, err := h.Data.Index(h.Year)
	if err != nil {
		return nil
	}
	known := make(map[string]bool, len(idx.Countries))
	for _, e := range idx.Countries {
		known[e.Slug()] = true
	}
	var missing []string
	for _, s := range slugs {
		if !known[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// applyGroup copies a request onto group after normalising its members.
func (h *Handler) applyGroup(group *models.CountryGroup, req groupRequest) error {
	if req.Name != "" {
		group.Name = strings.TrimSpace(req.Name)
	}
	group.Description = req.Description
	group.Color = req.Color
	group.Countries = models.NormalizeCountries(req.Countries)

	if group.Countries == "" {
		return fiber.NewError(http.StatusBadRequest, "At least one country is required")
	}
	if missing := h.unknownMembers(group.Slugs()); len(missing) > 0 {
		return fiber.NewError(http.StatusBadRequest, "Unknown countries: "+strings.Join(missing, ", "))
	}
	return nil
}

// GetCountryGroups lists saved groups, built-in ones first
// GET /api/groups
func (h *Handler) GetCountryGroups(c *fiber.Ctx) error {
	var groups []models.CountryGroup
	if err := h.DB.Order("is_builtin DESC, name ASC").Find(&groups).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(groups)
}

// CreateCountryGroup saves a user-defined comparison group
// POST /api/groups
func (h *Handler) CreateCountryGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	var group models.CountryGroup
	if err := h.applyGroup(&group, req); err != nil {
		return errorJSON(c, err)
	}
	if err := h.DB.Create(&group).Error; err != nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	AddEvent("info", "Country group created: "+group.Name)
	return c.Status(http.StatusCreated).JSON(group)
}

// UpdateCountryGroup edits a group; an empty name keeps the current one
// PUT /api/groups/:id
func (h *Handler) UpdateCountryGroup(c *fiber.Ctx) error {
	var group models.CountryGroup
	if err := h.DB.First(&group, c.Params("id")).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}

	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if err := h.applyGroup(&group, req); err != nil {
		return errorJSON(c, err)
	}
	if err := h.DB.Save(&group).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(group)
}

// DeleteCountryGroup removes a user-defined group. Built-in groups stay.
// DELETE /api/groups/:id
func (h *Handler) DeleteCountryGroup(c *fiber.Ctx) error {
	var group models.CountryGroup
	if err := h.DB.First(&group, c.Params("id")).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}
	if group.IsBuiltin {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Built-in groups cannot be deleted"})
	}
	if err := h.DB.Delete(&group).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	AddEvent("info", "Country group deleted: "+group.Name)
	return c.JSON(fiber.Map{"success": true})
}

// CompareCountryGroup runs the comparison view over a saved group
// GET /api/groups/:id/compare?year=
func (h *Handler) CompareCountryGroup(c *fiber.Ctx) error {
	var group models.CountryGroup
	if err := h.DB.First(&group, c.Params("id")).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return h.compare(c, year, group.Slugs(), all)
}
