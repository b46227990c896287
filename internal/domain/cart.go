package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductRef   string          `db:"product_id" json:"productRef"`
	ProductName  string          `db:"product_name" json:"productName"`
	ThumbnailURL string          `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	ColorName    string          `db:"color_name" json:"colorName"`
	SizeName     string          `db:"size_name" json:"sizeName"`
	Quantity     int             `db:"qty" json:"quantity"`
	Price        decimal.Decimal `db:"price_at_add" json:"price"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShopGroup is the part of a cart sold by one shop.
type ShopGroup struct {
	ShopRef  string     `json:"shopRef"`
	ShopName string     `json:"shopName"`
	Selected bool       `json:"selected"`
	ItemList []CartItem `json:"itemList"`
}

func (g ShopGroup) Quantity() int {
	n := 0
	for _, it := range g.ItemList {
		n += it.Quantity
	}
	return n
}

type CartDetail struct {
	ID        string      `json:"id"`
	ShopGroup []ShopGroup `json:"shopGroup"`
}

func (c CartDetail) TotalQuantity() int {
	n := 0
	for _, g := range c.ShopGroup {
		n += g.Quantity()
	}
	return n
}

// SelectedTotal sums item subtotals of the selected shop groups.
func (c CartDetail) SelectedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, g := range c.ShopGroup {
		if !g.Selected {
			continue
		}
		for _, it := range g.ItemList {
			total = total.Add(it.Subtotal())
		}
	}
	return total
}

func (c *CartDetail) Shop(ref string) (*ShopGroup, bool) {
	for i := range c.ShopGroup {
		if c.ShopGroup[i].ShopRef == ref {
			return &c.ShopGroup[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can hold it without sharing slices.
func (c CartDetail) Clone() CartDetail {
	out := CartDetail{ID: c.ID, ShopGroup: make([]ShopGroup, len(c.ShopGroup))}
	for i, g := range c.ShopGroup {
		items := make([]CartItem, len(g.ItemList))
		copy(items, g.ItemList)
		g.ItemList = items
		out.ShopGroup[i] = g
	}
	return out
}
