package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

// LoadUser attaches the logged-in user to Locals("user") when the session
// cookie resolves to one.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdminAPI is RequireAdmin for JSON routes: 401 without a session,
// 403 for non-admins.
func RequireAdminAPI(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid, "user_id": u.ID})
			return jsonError(c, fiber.StatusForbidden, "forbidden")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
