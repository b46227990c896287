package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = `id, name, COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	return out, err
}

// Get returns sql.ErrNoRows when the category does not exist.
func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) Create(id, name string) (domain.Category, error) {
	if _, err := r.db.Exec(`INSERT INTO categories(id,name,created_at) VALUES(?,?,CURRENT_TIMESTAMP)`, id, name); err != nil {
		return domain.Category{}, err
	}
	return r.Get(id)
}
