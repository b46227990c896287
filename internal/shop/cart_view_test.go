package shop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/shop"
)

type fakeCartAPI struct {
	cart      domain.CartDetail
	fetches   int
	toggleErr error
	requested []bool
}

func (f *fakeCartAPI) GetCartDetail(ctx context.Context) (domain.CartDetail, error) {
	f.fetches++
	return f.cart.Clone(), nil
}

func (f *fakeCartAPI) SetShopSelected(ctx context.Context, shopRef string, selected bool) (domain.CartDetail, error) {
	f.requested = append(f.requested, selected)
	if f.toggleErr != nil {
		return domain.CartDetail{}, f.toggleErr
	}
	g, ok := f.cart.Shop(shopRef)
	if !ok {
		return domain.CartDetail{}, errors.New("no such shop")
	}
	g.Selected = selected
	return f.cart.Clone(), nil
}

func sampleCart() domain.CartDetail {
	return domain.CartDetail{ID: "c1", ShopGroup: []domain.ShopGroup{
		{ShopRef: "shop-a", ShopName: "A", Selected: true, ItemList: []domain.CartItem{
			{ProductRef: "p1", Quantity: 2, Price: decimal.NewFromInt(100)},
			{ProductRef: "p2", Quantity: 1, Price: decimal.NewFromInt(50)},
		}},
		{ShopRef: "shop-b", ShopName: "B", Selected: false, ItemList: []domain.CartItem{
			{ProductRef: "p3", Quantity: 4, Price: decimal.NewFromInt(10)},
		}},
	}}
}

func TestCartView_NothingBeforeLoad(t *testing.T) {
	v := shop.NewCartView(&fakeCartAPI{cart: sampleCart()})
	_, ok := v.Detail()
	assert.False(t, ok)
	assert.Equal(t, 0, v.TotalQuantity())
	assert.True(t, v.SelectedTotal().IsZero())
}

func TestCartView_LoadFetchesOnce(t *testing.T) {
	api := &fakeCartAPI{cart: sampleCart()}
	v := shop.NewCartView(api)

	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, 1, api.fetches)

	d, ok := v.Detail()
	require.True(t, ok)
	assert.Equal(t, "c1", d.ID)
	assert.Equal(t, 7, v.TotalQuantity())
	assert.True(t, decimal.NewFromInt(250).Equal(v.SelectedTotal()))

	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, 2, api.fetches)
}

func TestCartView_ToggleTakesServerAnswer(t *testing.T) {
	api := &fakeCartAPI{cart: sampleCart()}
	v := shop.NewCartView(api)
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.ToggleShop(context.Background(), "shop-b"))
	assert.Equal(t, []bool{true}, api.requested)

	d, _ := v.Detail()
	g, ok := d.Shop("shop-b")
	require.True(t, ok)
	assert.True(t, g.Selected)
	assert.True(t, decimal.NewFromInt(290).Equal(v.SelectedTotal()))
}

func TestCartView_ToggleFailureKeepsLocal(t *testing.T) {
	api := &fakeCartAPI{cart: sampleCart(), toggleErr: errors.New("503")}
	v := shop.NewCartView(api)
	require.NoError(t, v.Load(context.Background()))

	err := v.ToggleShop(context.Background(), "shop-a")
	require.Error(t, err)
	assert.Equal(t, []bool{false}, api.requested)

	d, _ := v.Detail()
	g, _ := d.Shop("shop-a")
	assert.True(t, g.Selected)
}

func TestCartView_DetailIsACopy(t *testing.T) {
	v := shop.NewCartView(&fakeCartAPI{cart: sampleCart()})
	require.NoError(t, v.Load(context.Background()))

	d, _ := v.Detail()
	d.ShopGroup[0].Selected = false

	again, _ := v.Detail()
	assert.True(t, again.ShopGroup[0].Selected)
}

func TestCartView_ToggleUnknownShop(t *testing.T) {
	api := &fakeCartAPI{cart: sampleCart()}
	v := shop.NewCartView(api)
	assert.Error(t, v.ToggleShop(context.Background(), "shop-a"))

	require.NoError(t, v.Load(context.Background()))
	assert.Error(t, v.ToggleShop(context.Background(), "shop-z"))
	assert.Empty(t, api.requested)
}
