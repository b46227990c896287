package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// Token the CSRF middleware put into Locals; fall back to the cookie.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFoundPage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// apiError maps service errors onto JSON responses. Unknown errors are logged
// and reported without detail.
func apiError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidProduct):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicate):
		return jsonError(c, fiber.StatusConflict, "already exists")
	case errors.Is(err, services.ErrOutOfStock):
		return jsonError(c, fiber.StatusConflict, "insufficient stock")
	case errors.Is(err, services.ErrBadCreds):
		return jsonError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	applog.Error(c, action, err, nil)
	return jsonError(c, fiber.StatusInternalServerError, "internal error")
}
