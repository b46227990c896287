package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return apiError(c, "api.categories.list.fail", err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return apiError(c, "api.categories.get.fail", err)
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "name is required")
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), name)
	if err != nil {
		return apiError(c, "api.categories.create.fail", err)
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}
