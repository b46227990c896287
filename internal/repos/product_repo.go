package repos

import (
	"database/sql"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type ProductFilter struct {
	ShopID        string
	CategoryID    string
	PublishedOnly bool
	Limit         int
	Offset        int
}

const productColumns = `
    id, shop_id, category_id, name, COALESCE(description,'') AS description,
    COALESCE(thumbnail_url,'') AS thumbnail_url, is_published,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) List(f ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if f.ShopID != "" {
		where += ` AND shop_id = ?`
		args = append(args, f.ShopID)
	}
	if f.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.PublishedOnly {
		where += ` AND is_published = 1`
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	query := `SELECT ` + productColumns + `
  FROM products
  WHERE ` + where + `
  ORDER BY created_at DESC, id
  LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	out := []domain.Product{}
	if err := r.db.Select(&out, query, args...); err != nil {
		return nil, err
	}
	if err := r.loadTypes(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns sql.ErrNoRows when the product does not exist.
func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	if err := r.db.Get(&p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return p, err
	}
	ps := []domain.Product{p}
	if err := r.loadTypes(ps); err != nil {
		return domain.Product{}, err
	}
	return ps[0], nil
}

type variantRow struct {
	ProductID string          `db:"product_id"`
	ColorName string          `db:"color_name"`
	SizeName  string          `db:"size_name"`
	Price     decimal.Decimal `db:"price"`
	InStorage int             `db:"in_storage"`
}

// loadTypes fills Types for every product with a single query.
func (r *ProductRepo) loadTypes(products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		products[i].Types = []domain.ProductType{}
	}
	query, args, err := sqlx.In(`
		SELECT t.product_id, t.color_name, d.size_name, d.price, d.in_storage
		FROM product_types t
		JOIN product_type_details d ON d.type_id = t.id
		WHERE t.product_id IN (?)
		ORDER BY t.product_id, t.position, d.position`, ids)
	if err != nil {
		return err
	}
	var rows []variantRow
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, row := range rows {
		p := &products[index[row.ProductID]]
		n := len(p.Types)
		if n == 0 || p.Types[n-1].ColorName != row.ColorName {
			p.Types = append(p.Types, domain.ProductType{ColorName: row.ColorName})
			n++
		}
		p.Types[n-1].Details = append(p.Types[n-1].Details, domain.SizeDetail{
			SizeName:  row.SizeName,
			Price:     row.Price,
			InStorage: row.InStorage,
		})
	}
	return nil
}

// Create inserts the product with all its variants in one transaction.
func (r *ProductRepo) Create(p domain.Product) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO products(id, shop_id, category_id, name, description, thumbnail_url, is_published, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.ShopRef, p.CategoryRef, p.Name, p.Description, p.ThumbnailURL, p.IsPublished); err != nil {
		return err
	}
	for ti, t := range p.Types {
		res, err := tx.Exec(`INSERT INTO product_types(product_id, color_name, position) VALUES (?, ?, ?)`, p.ID, t.ColorName, ti)
		if err != nil {
			return err
		}
		typeID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for di, d := range t.Details {
			if _, err := tx.Exec(`
				INSERT INTO product_type_details(type_id, size_name, price, in_storage, position)
				VALUES (?, ?, ?, ?, ?)
			`, typeID, d.SizeName, d.Price, d.InStorage, di); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete reports whether a row was removed.
func (r *ProductRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return affected(res, err)
}

// SetPublished reports whether the product exists.
func (r *ProductRepo) SetPublished(id string, published bool) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE products SET is_published = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, published, id)
	return affected(res, err)
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
