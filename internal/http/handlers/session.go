package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func sessionCookie(sid string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
	}
}

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(sessionCookie(sid, secure))
	}
	return sid
}

func expireSID(c *fiber.Ctx, secure bool) {
	ck := sessionCookie("", secure)
	ck.Expires = time.Now().Add(-1 * time.Hour)
	c.Cookie(ck)
}

// cartOwner is the user id for logged-in shoppers and the session id
// otherwise.
func cartOwner(c *fiber.Ctx, secure bool) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ensureSID(c, secure)
}
