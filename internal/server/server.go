// Package server assembles the fiber application: middleware, JSON API and
// HTML routes.
package server

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/web"
)

const (
	bodyLimit   = 1 << 20 // 1 MiB
	globalLimit = 60
	loginLimit  = 5
)

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

// ErrorHandler logs the error and answers with a friendly message that never
// carries internal details: JSON under /api, the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})

	msg := "Something went wrong. Please try again."
	if code < fiber.StatusInternalServerError {
		msg = utils.StatusMessage(code)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// New wires every route of the storefront against db. store backs the
// category cache.
func New(cfg config.Config, db *sqlx.DB, store cache.Store) *fiber.App {
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo, Carts: repos.NewCartRepo(db)}
	deps := handlers.NewDeps(db, cfg, authSvc, store)

	app := fiber.New(fiber.Config{
		Views:        web.Views(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: accessLog{}}))
	app.Use(helmet.New())
	app.Use(handlers.LoadUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        globalLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/media/") || c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			}
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests")
		},
	}))
	// JSON endpoints are exempt: browsers cannot send a cross-site JSON body
	// without a preflight.
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		Next:           isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf") != ""})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static media ----------
	app.Get("/media/*", mediaHandler(cfg.MediaDir))

	// ---------- JSON API ----------
	api := app.Group("/api")
	adminAPI := handlers.RequireAdminAPI(authSvc)

	api.Get("/user/:id", deps.UserHandler.Get)

	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/:id", deps.CategoryHandler.Get)
	api.Post("/categories", adminAPI, deps.CategoryHandler.Create)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Post("/products", adminAPI, deps.ProductHandler.Create)
	api.Delete("/products/:id", adminAPI, deps.ProductHandler.Remove)
	api.Patch("/products/:id/continue", adminAPI, deps.ProductHandler.Continue)
	api.Patch("/products/:id/stop", adminAPI, deps.ProductHandler.Stop)

	api.Get("/cart", deps.CartHandler.Detail)
	api.Post("/cart/items", deps.CartHandler.AddItem)
	api.Delete("/cart/items", deps.CartHandler.RemoveItem)
	api.Patch("/cart/shops/:shopRef", deps.CartHandler.SetShopSelected)

	api.Post("/auth/login", loginThrottle(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
	}), deps.AuthHandler.APILogin)
	api.Post("/auth/logout", deps.AuthHandler.APILogout)

	// ---------- HTML ----------
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/cart") })
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", loginThrottle(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	app.Get("/cart", deps.CartHandler.Page)
	app.Post("/cart/shops/:shopRef/toggle", deps.CartHandler.ToggleShop)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/admin/products") })
	admin.Get("/products", deps.AdminHandler.ProductsPage)
	admin.Post("/products/:id/delete", deps.AdminHandler.DeleteProduct)
	admin.Post("/products/:id/status", deps.AdminHandler.UpdateStatus)

	// ---------- Health & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app
}

func loginThrottle(reached fiber.Handler) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return reached(c)
		},
	})
}

// mediaHandler serves product images from dir and refuses path traversal.
func mediaHandler(dir string) fiber.Handler {
	if !filepath.IsAbs(dir) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}

// accessLog routes fiber's access log lines into the application log.
type accessLog struct{}

func (accessLog) Write(p []byte) (int, error) {
	applog.Info(nil, "http.access", map[string]any{"line": strings.TrimSpace(string(p))})
	return len(p), nil
}
