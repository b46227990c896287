package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.CookieSecure)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	fail := func(reason string) error {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}

	u, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		return fail("bad_credentials")
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	if u.IsAdmin() {
		return c.Redirect("/admin/products")
	}
	return c.Redirect("/cart")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c, h.CookieSecure)
	_ = h.Auth.Logout(sid)
	expireSID(c, h.CookieSecure)
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/login")
}

// APILogin is the JSON variant of Login. It answers with the user's details
// and leaves the session in the sid cookie.
func (h *AuthHandler) APILogin(c *fiber.Ctx) error {
	sid := ensureSID(c, h.CookieSecure)
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	email, ok := validate.Email(in.Email)
	if !ok || !validate.Password(in.Password) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return jsonError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	u, err := h.Auth.Login(sid, email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return apiError(c, "auth.login.error", err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(u.Details())
}

func (h *AuthHandler) APILogout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = h.Auth.Logout(sid)
		applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	}
	expireSID(c, h.CookieSecure)
	return c.SendStatus(fiber.StatusNoContent)
}
