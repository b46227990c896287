package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"

	"github.com/google/uuid"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Shops *repos.ShopRepo
	// Cache is optional; category lookups read through it.
	Cache cache.Store
	TTL   time.Duration
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, shops *repos.ShopRepo, store cache.Store, ttl time.Duration) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Shops: shops, Cache: store, TTL: ttl}
}

func categoryKey(id string) string { return "category:" + id }

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

// GetCategory returns ErrNotFound for unknown ids. Cache failures fall back
// to the database.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if s.Cache != nil {
		v, ok, err := s.Cache.Get(ctx, categoryKey(id))
		if err != nil {
			applog.Error(nil, "cache.category.get.fail", err, map[string]any{"category_id": id})
		}
		if ok {
			var c domain.Category
			if err := json.Unmarshal([]byte(v), &c); err == nil {
				return c, nil
			}
		}
	}

	c, err := s.Cats.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, err
	}

	if s.Cache != nil {
		b, _ := json.Marshal(c)
		if err := s.Cache.Set(ctx, categoryKey(id), string(b), s.TTL); err != nil {
			applog.Error(nil, "cache.category.set.fail", err, map[string]any{"category_id": id})
		}
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidProduct)
	}
	c, err := s.Cats.Create(uuid.NewString(), name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, ErrDuplicate
		}
		return domain.Category{}, err
	}
	return c, nil
}

func (s *CatalogService) ListProducts(f repos.ProductFilter) ([]domain.Product, error) {
	return s.Prods.List(f)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

// CreateProduct validates the variations, checks the shop and category
// references and stores the product under a fresh id.
func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	if _, err := s.GetCategory(ctx, p.CategoryRef); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.CategoryRef)
		}
		return domain.Product{}, err
	}
	if _, err := s.Shops.Get(p.ShopRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("%w: unknown shop %q", ErrInvalidProduct, p.ShopRef)
		}
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	for i := range p.Types {
		p.Types[i].ColorName = strings.TrimSpace(p.Types[i].ColorName)
		for j := range p.Types[i].Details {
			p.Types[i].Details[j].SizeName = strings.TrimSpace(p.Types[i].Details[j].SizeName)
		}
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return s.GetProduct(p.ID)
}

func (s *CatalogService) RemoveProduct(id string) error {
	found, err := s.Prods.Delete(id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// SetPublished is a no-op success when the product already has that state.
func (s *CatalogService) SetPublished(id string, published bool) error {
	found, err := s.Prods.SetPublished(id, published)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
