// Package shop holds the customer-side cart view. It keeps the cart last
// returned by the server and a local working copy, and only ever replaces the
// local copy with state the server has confirmed.
package shop

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CartAPI interface {
	GetCartDetail(ctx context.Context) (domain.CartDetail, error)
	SetShopSelected(ctx context.Context, shopRef string, selected bool) (domain.CartDetail, error)
}

type CartView struct {
	api CartAPI

	mu     sync.Mutex
	remote *domain.CartDetail
	local  *domain.CartDetail
}

func NewCartView(api CartAPI) *CartView {
	return &CartView{api: api}
}

// Load fetches the cart unless one is already held, then refreshes the local
// copy from it.
func (v *CartView) Load(ctx context.Context) error {
	v.mu.Lock()
	have := v.remote != nil
	v.mu.Unlock()

	if !have {
		cart, err := v.api.GetCartDetail(ctx)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		v.mu.Lock()
		v.remote = &cart
		v.mu.Unlock()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	local := v.remote.Clone()
	v.local = &local
	return nil
}

// Refresh drops the held cart and loads it again.
func (v *CartView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.remote = nil
	v.mu.Unlock()
	return v.Load(ctx)
}

// Detail returns a copy of the local cart; false means nothing to render yet.
func (v *CartView) Detail() (domain.CartDetail, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.local == nil {
		return domain.CartDetail{}, false
	}
	return v.local.Clone(), true
}

// ToggleShop asks the server to flip the selection of one shop group. The
// local copy changes only when the server answers.
func (v *CartView) ToggleShop(ctx context.Context, shopRef string) error {
	v.mu.Lock()
	if v.local == nil {
		v.mu.Unlock()
		return fmt.Errorf("toggle %s: cart not loaded", shopRef)
	}
	g, ok := v.local.Shop(shopRef)
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("toggle %s: shop not in cart", shopRef)
	}
	want := !g.Selected
	v.mu.Unlock()

	cart, err := v.api.SetShopSelected(ctx, shopRef, want)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", shopRef, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.remote = &cart
	local := cart.Clone()
	v.local = &local
	return nil
}

func (v *CartView) TotalQuantity() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.local == nil {
		return 0
	}
	return v.local.TotalQuantity()
}

func (v *CartView) SelectedTotal() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.local == nil {
		return decimal.Zero
	}
	return v.local.SelectedTotal()
}
