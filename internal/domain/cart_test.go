package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func sampleCart() domain.CartDetail {
	return domain.CartDetail{
		ID: "cart-1",
		ShopGroup: []domain.ShopGroup{
			{ShopRef: "s-1", ShopName: "North", Selected: true, ItemList: []domain.CartItem{
				{ProductRef: "p-1", Quantity: 2, Price: decimal.RequireFromString("10.50")},
				{ProductRef: "p-2", Quantity: 1, Price: decimal.NewFromInt(4)},
			}},
			{ShopRef: "s-2", ShopName: "South", Selected: false, ItemList: []domain.CartItem{
				{ProductRef: "p-3", Quantity: 5, Price: decimal.NewFromInt(1)},
			}},
		},
	}
}

func TestCartTotals(t *testing.T) {
	c := sampleCart()
	assert.Equal(t, 8, c.TotalQuantity())
	assert.Equal(t, 3, c.ShopGroup[0].Quantity())
	assert.True(t, c.SelectedTotal().Equal(decimal.NewFromInt(25)), "got %s", c.SelectedTotal())
}

func TestCartShopLookupAndClone(t *testing.T) {
	c := sampleCart()

	g, ok := c.Shop("s-2")
	require.True(t, ok)
	g.Selected = true
	assert.True(t, c.ShopGroup[1].Selected, "Shop returns a pointer into the cart")

	_, ok = c.Shop("missing")
	assert.False(t, ok)

	cp := c.Clone()
	cp.ShopGroup[0].ItemList[0].Quantity = 99
	cp.ShopGroup[0].Selected = false
	assert.Equal(t, 2, c.ShopGroup[0].ItemList[0].Quantity)
	assert.True(t, c.ShopGroup[0].Selected)
}

func TestCartCloneKeepsEmptyItemList(t *testing.T) {
	c := domain.CartDetail{ID: "cart-2", ShopGroup: []domain.ShopGroup{{ShopRef: "s-1", ItemList: []domain.CartItem{}}}}

	b, err := json.Marshal(c.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"itemList":[]`)
}
