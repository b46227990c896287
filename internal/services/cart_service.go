package services

import (
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

type AddItem struct {
	ProductID string `json:"productRef"`
	Color     string `json:"colorName"`
	Size      string `json:"sizeName"`
	Qty       int    `json:"quantity"`
}

func (s *CartService) Detail(owner string) (domain.CartDetail, error) {
	cartID, err := s.Carts.EnsureCart(owner)
	if err != nil {
		return domain.CartDetail{}, err
	}
	return s.Carts.Detail(cartID)
}

// Add puts qty units of one variant in the cart. qty is clamped to 1..50, the
// line never holds more than 50 units, and the variant must be published and
// have stock for the whole line.
func (s *CartService) Add(owner string, in AddItem) (domain.CartDetail, error) {
	qty := validate.Qty(in.Qty)
	p, err := s.Prods.Get(in.ProductID)
	if err != nil {
		if isNoRows(err) {
			return domain.CartDetail{}, ErrNotFound
		}
		return domain.CartDetail{}, err
	}
	if !p.IsPublished {
		return domain.CartDetail{}, ErrNotFound
	}
	v, ok := p.Variant(in.Color, in.Size)
	if !ok {
		return domain.CartDetail{}, fmt.Errorf("%w: variant %s/%s", ErrNotFound, in.Color, in.Size)
	}
	cartID, err := s.Carts.EnsureCart(owner)
	if err != nil {
		return domain.CartDetail{}, err
	}
	if err := s.Carts.UpsertItem(cartID, repos.CartLine{
		ShopID:    p.ShopRef,
		ProductID: p.ID,
		Color:     in.Color,
		Size:      in.Size,
		Qty:       qty,
		Price:     v.Price,
	}, validate.MaxQty, v.InStorage); err != nil {
		if errors.Is(err, repos.ErrOverStock) {
			return domain.CartDetail{}, fmt.Errorf("%w: %s %s/%s has %d in stock", ErrOutOfStock, p.ID, in.Color, in.Size, v.InStorage)
		}
		return domain.CartDetail{}, err
	}
	return s.Carts.Detail(cartID)
}

func (s *CartService) RemoveItem(owner, productID, color, size string) (domain.CartDetail, error) {
	cartID, err := s.Carts.EnsureCart(owner)
	if err != nil {
		return domain.CartDetail{}, err
	}
	found, err := s.Carts.RemoveItem(cartID, productID, color, size)
	if err != nil {
		return domain.CartDetail{}, err
	}
	if !found {
		return domain.CartDetail{}, ErrNotFound
	}
	return s.Carts.Detail(cartID)
}

// SetShopSelected returns ErrNotFound when the shop has no group in the cart.
func (s *CartService) SetShopSelected(owner, shopRef string, selected bool) (domain.CartDetail, error) {
	cartID, err := s.Carts.EnsureCart(owner)
	if err != nil {
		return domain.CartDetail{}, err
	}
	found, err := s.Carts.SetShopSelected(cartID, shopRef, selected)
	if err != nil {
		return domain.CartDetail{}, err
	}
	if !found {
		return domain.CartDetail{}, ErrNotFound
	}
	return s.Carts.Detail(cartID)
}

func (s *CartService) Merge(fromOwner, toOwner string) error {
	if fromOwner == toOwner {
		return nil
	}
	return s.Carts.Merge(fromOwner, toOwner)
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
