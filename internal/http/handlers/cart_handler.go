package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/admin"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/shop"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart         *services.CartService
	CookieSecure bool
}

// Detail serves GET /api/cart.
func (h *CartHandler) Detail(c *fiber.Ctx) error {
	cart, err := h.Cart.Detail(cartOwner(c, h.CookieSecure))
	if err != nil {
		return apiError(c, "api.cart.get.fail", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	owner := cartOwner(c, h.CookieSecure)
	var in services.AddItem
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if !validLine(&in.ProductID, &in.Color, &in.Size) {
		applog.Security(c, "validation.fail", map[string]any{"field": "cart_item"})
		return jsonError(c, fiber.StatusBadRequest, "invalid item")
	}
	cart, err := h.Cart.Add(owner, in)
	if err != nil {
		return apiError(c, "api.cart.add.fail", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	owner := cartOwner(c, h.CookieSecure)
	var in services.AddItem
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if !validLine(&in.ProductID, &in.Color, &in.Size) {
		return jsonError(c, fiber.StatusBadRequest, "invalid item")
	}
	cart, err := h.Cart.RemoveItem(owner, in.ProductID, in.Color, in.Size)
	if err != nil {
		return apiError(c, "api.cart.remove.fail", err)
	}
	return c.JSON(cart)
}

// SetShopSelected serves PATCH /api/cart/shops/:shopRef with {"selected": bool}
// and answers with the cart as stored.
func (h *CartHandler) SetShopSelected(c *fiber.Ctx) error {
	owner := cartOwner(c, h.CookieSecure)
	shopRef, ok := validate.ID(c.Params("shopRef"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}
	var in struct {
		Selected *bool `json:"selected"`
	}
	if err := c.BodyParser(&in); err != nil || in.Selected == nil {
		return jsonError(c, fiber.StatusBadRequest, "selected is required")
	}
	cart, err := h.Cart.SetShopSelected(owner, shopRef, *in.Selected)
	if err != nil {
		return apiError(c, "api.cart.select.fail", err)
	}
	return c.JSON(cart)
}

// Page renders the cart through the same view state the shop front-end uses.
func (h *CartHandler) Page(c *fiber.Ctx) error {
	view := shop.NewCartView(ownerCart{svc: h.Cart, owner: cartOwner(c, h.CookieSecure)})
	if err := view.Load(c.UserContext()); err != nil {
		return err
	}
	cart, _ := view.Detail()
	return render(c, "cart", fiber.Map{
		"Cart":     cart,
		"Quantity": view.TotalQuantity(),
		"Total":    admin.FormatVND(view.SelectedTotal()),
	})
}

// ToggleShop serves the cart page's per-shop checkbox form.
func (h *CartHandler) ToggleShop(c *fiber.Ctx) error {
	shopRef, ok := validate.ID(c.Params("shopRef"))
	if !ok {
		return notFoundPage(c, "This shop is not in your cart")
	}
	view := shop.NewCartView(ownerCart{svc: h.Cart, owner: cartOwner(c, h.CookieSecure)})
	if err := view.Load(c.UserContext()); err != nil {
		return err
	}
	if err := view.ToggleShop(c.UserContext(), shopRef); err != nil {
		applog.Info(c, "cart.toggle.fail", map[string]any{"shop": shopRef, "err": err.Error()})
	}
	return c.Redirect("/cart")
}

func validLine(product, color, size *string) bool {
	var ok1, ok2, ok3 bool
	*product, ok1 = validate.ID(*product)
	*color, ok2 = validate.Label(*color)
	*size, ok3 = validate.Label(*size)
	return ok1 && ok2 && ok3
}

// ownerCart binds the cart service to one owner for shop.CartView.
type ownerCart struct {
	svc   *services.CartService
	owner string
}

func (o ownerCart) GetCartDetail(ctx context.Context) (domain.CartDetail, error) {
	return o.svc.Detail(o.owner)
}

func (o ownerCart) SetShopSelected(ctx context.Context, shopRef string, selected bool) (domain.CartDetail, error) {
	return o.svc.SetShopSelected(o.owner, shopRef, selected)
}
