package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

// GetUser returns nil without error when the user does not exist.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.UserDetails, error) {
	var u *domain.UserDetails
	if err := c.do(ctx, http.MethodGet, "/api/user/"+url.PathEscape(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var cat domain.Category
	err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(id), nil, nil, &cat)
	return cat, err
}

type ProductQuery struct {
	ShopRef       string
	CategoryRef   string
	PublishedOnly bool
	Limit         int
	Offset        int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.ShopRef != "" {
		v.Set("shop", q.ShopRef)
	}
	if q.CategoryRef != "" {
		v.Set("category", q.CategoryRef)
	}
	if q.PublishedOnly {
		v.Set("published", "true")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, http.MethodGet, "/api/products", q.values(), nil, &out)
	return out, err
}

func (c *Client) RemoveProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, nil)
}

// MarkProductContinue puts the product back on sale.
func (c *Client) MarkProductContinue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/products/"+url.PathEscape(id)+"/continue", nil, nil, nil)
}

// MarkProductStop takes the product off sale.
func (c *Client) MarkProductStop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/products/"+url.PathEscape(id)+"/stop", nil, nil, nil)
}

func (c *Client) GetCartDetail(ctx context.Context) (domain.CartDetail, error) {
	var cart domain.CartDetail
	err := c.do(ctx, http.MethodGet, "/api/cart", nil, nil, &cart)
	return cart, err
}

type AddToCart struct {
	ProductRef string `json:"productRef"`
	ColorName  string `json:"colorName"`
	SizeName   string `json:"sizeName"`
	Quantity   int    `json:"quantity"`
}

func (c *Client) AddToCart(ctx context.Context, in AddToCart) (domain.CartDetail, error) {
	var cart domain.CartDetail
	err := c.do(ctx, http.MethodPost, "/api/cart/items", nil, in, &cart)
	return cart, err
}

// SetShopSelected returns the cart as the server sees it after the change.
func (c *Client) SetShopSelected(ctx context.Context, shopRef string, selected bool) (domain.CartDetail, error) {
	var cart domain.CartDetail
	body := map[string]bool{"selected": selected}
	err := c.do(ctx, http.MethodPatch, "/api/cart/shops/"+url.PathEscape(shopRef), nil, body, &cart)
	return cart, err
}

// Login authenticates and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.UserDetails, error) {
	var u domain.UserDetails
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}
