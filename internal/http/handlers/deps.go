package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	UserHandler     *UserHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	AuthHandler     *AuthHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, store cache.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	shopRepo := repos.NewShopRepo(db)
	cartRepo := repos.NewCartRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, shopRepo, store, cfg.CategoryCacheTTL)
	cartSvc := services.NewCartService(cartRepo, prodRepo)

	return &Deps{
		UserHandler:     &UserHandler{Users: services.NewUserService(userRepo)},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, CookieSecure: cfg.CookieSecure},
		AuthHandler:     &AuthHandler{Auth: auth, CookieSecure: cfg.CookieSecure},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc},
	}
}
