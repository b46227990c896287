package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List serves GET /api/products. Admins see unpublished products unless they
// ask for ?published=true.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.ProductFilter{
		PublishedOnly: c.QueryBool("published", false),
		Limit:         c.QueryInt("limit", 0),
		Offset:        c.QueryInt("offset", 0),
	}
	if u := currentUser(c); u == nil || !u.IsAdmin() {
		f.PublishedOnly = true
	}
	if v := c.Query("shop"); v != "" {
		id, ok := validate.ID(v)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid shop")
		}
		f.ShopID = id
	}
	if v := c.Query("category"); v != "" {
		id, ok := validate.ID(v)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid category")
		}
		f.CategoryID = id
	}
	if f.Limit < 0 || f.Offset < 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid paging")
	}
	out, err := h.Catalog.ListProducts(f)
	if err != nil {
		return apiError(c, "api.products.list.fail", err)
	}
	return c.JSON(out)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return apiError(c, "api.products.get.fail", err)
	}
	if !p.IsPublished {
		if u := currentUser(c); u == nil || !u.IsAdmin() {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in domain.Product
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return apiError(c, "api.products.create.fail", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	if err := h.Catalog.RemoveProduct(id); err != nil {
		return apiError(c, "api.products.delete.fail", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// Continue puts a product back on sale.
func (h *ProductHandler) Continue(c *fiber.Ctx) error { return h.setPublished(c, true) }

// Stop takes a product off sale.
func (h *ProductHandler) Stop(c *fiber.Ctx) error { return h.setPublished(c, false) }

func (h *ProductHandler) setPublished(c *fiber.Ctx, published bool) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	if err := h.Catalog.SetPublished(id, published); err != nil {
		return apiError(c, "api.products.status.fail", err)
	}
	applog.Audit(c, "product.status", map[string]any{"product_id": id, "published": published})
	return c.JSON(fiber.Map{"id": id, "isPublished": published})
}
