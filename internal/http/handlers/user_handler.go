package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
	"storefront/internal/validate"
)

type UserHandler struct {
	Users *services.UserService
}

// Get answers GET /api/user/:id with the user's details, or null when no
// such user exists.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.JSON(nil)
	}
	d, err := h.Users.FindByID(id)
	if err != nil {
		return apiError(c, "api.user.get.fail", err)
	}
	if d == nil {
		return c.JSON(nil)
	}
	return c.JSON(d)
}
