package handlers

import (
	"net/http"

	"factbook-dashboard/backend/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers lists admin accounts
// GET /api/users
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	var users []models.Admin
	if result := h.DB.Order("id ASC").Find(&users); result.Error != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}
	return c.JSON(users)
}

// CreateUser adds an admin account
// POST /api/users
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not hash password"})
	}
	user := models.Admin{Username: input.Username, Password: string(hashed)}
	if result := h.DB.Create(&user); result.Error != nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": result.Error.Error()})
	}
	AddEvent("info", "User created: "+user.Username)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "User created", "user": user.Username})
}

// DeleteUser removes an admin account. The caller cannot delete itself.
// DELETE /api/users/:id
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	var user models.Admin
	if err := h.DB.First(&user, c.Params("id")).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Username == currentUser(c) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete the current user"})
	}
	if result := h.DB.Delete(&user); result.Error != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
