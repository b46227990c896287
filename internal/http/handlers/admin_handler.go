package handlers

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/admin"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Catalog *services.CatalogService
}

var flashMessages = map[string]bool{
	admin.MsgDeleted:      true,
	admin.MsgDeleteFailed: true,
	admin.MsgPublished:    true,
	admin.MsgPaused:       true,
	admin.MsgStatusFailed: true,
}

// GET /admin/products
func (h *AdminHandler) ProductsPage(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts(repos.ProductFilter{})
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	tbl := admin.NewProductTable(products, h.Catalog, catalogActions{h.Catalog}, admin.LogNotifier{})
	tbl.LoadCategories(c.UserContext())

	data := fiber.Map{"Rows": tbl.Rows()}
	if m := c.Query("ok"); flashMessages[m] {
		data["Flash"] = m
	}
	if m := c.Query("err"); flashMessages[m] {
		data["FlashErr"] = m
	}
	return render(c, "admin_products", data)
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	n := &flash{}
	tbl := admin.NewProductTable(nil, h.Catalog, catalogActions{h.Catalog}, n)
	if err := tbl.Delete(c.UserContext(), id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
	} else {
		applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	}
	return c.Redirect("/admin/products?" + n.query())
}

// POST /admin/products/:id/status with publish=true|false
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	publish := c.FormValue("publish") == "true"
	n := &flash{}
	tbl := admin.NewProductTable(nil, h.Catalog, catalogActions{h.Catalog}, n)
	if err := tbl.SetStatus(c.UserContext(), id, publish); err != nil {
		applog.Error(c, "admin.products.status.fail", err, map[string]any{"product_id": id})
	} else {
		applog.Audit(c, "admin.products.status", map[string]any{"product_id": id, "published": publish})
	}
	return c.Redirect("/admin/products?" + n.query())
}

// catalogActions runs admin table actions against the in-process catalog.
type catalogActions struct{ svc *services.CatalogService }

func (a catalogActions) RemoveProduct(ctx context.Context, id string) error {
	return a.svc.RemoveProduct(id)
}

func (a catalogActions) MarkProductContinue(ctx context.Context, id string) error {
	return a.svc.SetPublished(id, true)
}

func (a catalogActions) MarkProductStop(ctx context.Context, id string) error {
	return a.svc.SetPublished(id, false)
}

// flash carries the last notification into the redirect.
type flash struct {
	ok, err string
}

func (f *flash) Success(msg string) { f.ok = msg }
func (f *flash) Error(msg string)   { f.err = msg }

func (f *flash) query() string {
	v := url.Values{}
	if f.ok != "" {
		v.Set("ok", f.ok)
	}
	if f.err != "" {
		v.Set("err", f.err)
	}
	return v.Encode()
}
