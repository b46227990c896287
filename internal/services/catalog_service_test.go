package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func newCatalog(t *testing.T, store cache.Store) *services.CatalogService {
	db := seeded(t)
	return services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), repos.NewShopRepo(db), store, time.Minute)
}

func TestCatalog_GetCategoryReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	svc := newCatalog(t, store)

	c, err := svc.GetCategory(ctx, "cat-shirts")
	require.NoError(t, err)
	assert.Equal(t, "Shirts", c.Name)

	raw, ok, err := store.Get(ctx, "category:cat-shirts")
	require.NoError(t, err)
	require.True(t, ok, "lookup should populate the cache")
	assert.Contains(t, raw, "Shirts")

	// A cached entry wins over the database.
	require.NoError(t, store.Set(ctx, "category:cat-shirts", `{"id":"cat-shirts","name":"Cached Shirts"}`, 0))
	c, err = svc.GetCategory(ctx, "cat-shirts")
	require.NoError(t, err)
	assert.Equal(t, "Cached Shirts", c.Name)

	_, err = svc.GetCategory(ctx, "cat-missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCatalog_CreateCategory(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, nil)

	c, err := svc.CreateCategory(ctx, "  Hats ")
	require.NoError(t, err)
	assert.Equal(t, "Hats", c.Name)
	assert.NotEmpty(t, c.ID)

	_, err = svc.CreateCategory(ctx, "hats")
	assert.ErrorIs(t, err, services.ErrDuplicate)

	_, err = svc.CreateCategory(ctx, " ")
	assert.Error(t, err)
}

func TestCatalog_ListProductsLoadsVariants(t *testing.T) {
	svc := newCatalog(t, nil)

	all, err := svc.ListProducts(repos.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "p-canvas-shoe", all[0].ID)

	published, err := svc.ListProducts(repos.ProductFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	p, err := svc.GetProduct("p-linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, []string{"White", "Navy"}, p.ColorNames())
	assert.Equal(t, []string{"M", "L"}, p.SizeNames())
	assert.Equal(t, 10, p.TotalStock())
	assert.True(t, p.BasePrice().Equal(decimal.NewFromInt(250000)))
}

func TestCatalog_CreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, nil)

	in := domain.Product{
		ShopRef:     "shop-hanoi",
		CategoryRef: "cat-pants",
		Name:        "Wide Trousers",
		Types: []domain.ProductType{
			{ColorName: " Grey ", Details: []domain.SizeDetail{
				{SizeName: "S", Price: decimal.NewFromInt(300000), InStorage: 1},
				{SizeName: "M", Price: decimal.NewFromInt(310000), InStorage: 2},
			}},
		},
	}
	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{"Grey"}, p.ColorNames())
	assert.Equal(t, 3, p.TotalStock())

	bad := in
	bad.CategoryRef = "cat-missing"
	_, err = svc.CreateProduct(ctx, bad)
	assert.ErrorIs(t, err, services.ErrInvalidProduct)

	bad = in
	bad.ShopRef = "shop-missing"
	_, err = svc.CreateProduct(ctx, bad)
	assert.ErrorIs(t, err, services.ErrInvalidProduct)

	bad = in
	bad.Types = nil
	_, err = svc.CreateProduct(ctx, bad)
	assert.ErrorIs(t, err, services.ErrInvalidProduct)
}

func TestCatalog_RemoveAndPublish(t *testing.T) {
	svc := newCatalog(t, nil)

	require.NoError(t, svc.SetPublished("p-canvas-shoe", true))
	require.NoError(t, svc.SetPublished("p-canvas-shoe", true), "repeating a state change is harmless")
	p, err := svc.GetProduct("p-canvas-shoe")
	require.NoError(t, err)
	assert.True(t, p.IsPublished)

	require.NoError(t, svc.SetPublished("p-canvas-shoe", false))
	p, _ = svc.GetProduct("p-canvas-shoe")
	assert.False(t, p.IsPublished)

	assert.ErrorIs(t, svc.SetPublished("p-missing", true), services.ErrNotFound)

	require.NoError(t, svc.RemoveProduct("p-chino"))
	assert.ErrorIs(t, svc.RemoveProduct("p-chino"), services.ErrNotFound)
	_, err = svc.GetProduct("p-chino")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
