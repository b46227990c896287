package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ShopRepo struct{ db *sqlx.DB }

func NewShopRepo(db *sqlx.DB) *ShopRepo { return &ShopRepo{db: db} }

func (r *ShopRepo) List() ([]domain.Shop, error) {
	out := []domain.Shop{}
	err := r.db.Select(&out, `SELECT id, name FROM shops ORDER BY name`)
	return out, err
}

// Get returns sql.ErrNoRows when the shop does not exist.
func (r *ShopRepo) Get(id string) (domain.Shop, error) {
	var s domain.Shop
	err := r.db.Get(&s, `SELECT id, name FROM shops WHERE id = ?`, id)
	return s, err
}
