package repos

import (
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// EnsureCart returns the cart id of owner, creating the cart on first use.
// owner is the user id for logged-in shoppers and the session id otherwise.
func (r *CartRepo) EnsureCart(owner string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE owner = ?`, owner)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	cartID = uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO carts(id, owner, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(owner) DO NOTHING`,
		cartID, owner, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	// Another request may have won the insert.
	err = r.db.Get(&cartID, `SELECT id FROM carts WHERE owner = ?`, owner)
	return cartID, err
}

type shopGroupRow struct {
	ShopID   string `db:"shop_id"`
	ShopName string `db:"shop_name"`
	Selected bool   `db:"selected"`
}

type cartItemRow struct {
	ShopID string `db:"shop_id"`
	domain.CartItem
}

// Detail loads the cart grouped by shop. Groups without items are left out.
func (r *CartRepo) Detail(cartID string) (domain.CartDetail, error) {
	out := domain.CartDetail{ID: cartID, ShopGroup: []domain.ShopGroup{}}

	var groups []shopGroupRow
	if err := r.db.Select(&groups, `
	  SELECT cs.shop_id, s.name AS shop_name, cs.selected
	  FROM cart_shops cs JOIN shops s ON s.id = cs.shop_id
	  WHERE cs.cart_id = ?
	  ORDER BY s.name, cs.shop_id
	`, cartID); err != nil {
		return out, err
	}
	var items []cartItemRow
	if err := r.db.Select(&items, `
	  SELECT p.shop_id, ci.product_id, p.name AS product_name, COALESCE(p.thumbnail_url,'') AS thumbnail_url,
	         ci.color_name, ci.size_name, ci.qty, ci.price_at_add
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.rowid
	`, cartID); err != nil {
		return out, err
	}

	byShop := map[string][]domain.CartItem{}
	for _, it := range items {
		byShop[it.ShopID] = append(byShop[it.ShopID], it.CartItem)
	}
	for _, g := range groups {
		list := byShop[g.ShopID]
		if len(list) == 0 {
			continue
		}
		out.ShopGroup = append(out.ShopGroup, domain.ShopGroup{
			ShopRef:  g.ShopID,
			ShopName: g.ShopName,
			Selected: g.Selected,
			ItemList: list,
		})
	}
	return out, nil
}

type CartLine struct {
	ShopID    string
	ProductID string
	Color     string
	Size      string
	Qty       int
	Price     decimal.Decimal
}

// ErrOverStock is returned by UpsertItem when the line would hold more units
// than the variant has in storage.
var ErrOverStock = errors.New("cart line exceeds stock")

// UpsertItem adds l.Qty to the line, creating the line and its shop group as
// needed. The resulting line quantity is capped at maxQty and must not exceed
// stock. New shop groups start selected.
func (r *CartRepo) UpsertItem(cartID string, l CartLine, maxQty, stock int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	err = tx.Get(&existing, `
		SELECT qty FROM cart_items
		WHERE cart_id = ? AND product_id = ? AND color_name = ? AND size_name = ?
	`, cartID, l.ProductID, l.Color, l.Size)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	total := min(existing+l.Qty, maxQty)
	if total > stock {
		return ErrOverStock
	}
	if l.Qty = total - existing; l.Qty <= 0 {
		// Already at the cap.
		return tx.Commit()
	}

	if err := upsertLine(tx, cartID, l, true); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertLine(tx *sqlx.Tx, cartID string, l CartLine, selected bool) error {
	if _, err := tx.Exec(`
		INSERT INTO cart_shops(cart_id, shop_id, selected) VALUES (?, ?, ?)
		ON CONFLICT(cart_id, shop_id) DO UPDATE SET selected = MAX(cart_shops.selected, excluded.selected)
	`, cartID, l.ShopID, selected); err != nil {
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO cart_items(cart_id, product_id, color_name, size_name, qty, price_at_add, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id, product_id, color_name, size_name) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, l.ProductID, l.Color, l.Size, l.Qty, l.Price)
	return err
}

// RemoveItem deletes one line and drops the shop group once it is empty.
func (r *CartRepo) RemoveItem(cartID, productID, color, size string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var shopID string
	if err := tx.Get(&shopID, `SELECT shop_id FROM products WHERE id = ?`, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	found, err := affected(tx.Exec(`
		DELETE FROM cart_items
		WHERE cart_id = ? AND product_id = ? AND color_name = ? AND size_name = ?
	`, cartID, productID, color, size))
	if err != nil || !found {
		return found, err
	}
	if _, err := tx.Exec(`
		DELETE FROM cart_shops
		WHERE cart_id = ? AND shop_id = ? AND NOT EXISTS (
		  SELECT 1 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		  WHERE ci.cart_id = ? AND p.shop_id = ?)
	`, cartID, shopID, cartID, shopID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// SetShopSelected reports whether the shop group exists in the cart.
func (r *CartRepo) SetShopSelected(cartID, shopID string, selected bool) (bool, error) {
	res, err := r.db.Exec(`UPDATE cart_shops SET selected = ? WHERE cart_id = ? AND shop_id = ?`, selected, cartID, shopID)
	return affected(res, err)
}

// Merge folds the cart of fromOwner into the cart of toOwner. Quantities of
// identical lines add up, a shop stays selected if either side selected it,
// and the source cart is removed.
func (r *CartRepo) Merge(fromOwner, toOwner string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var fromID, toID sql.NullString
	if err := tx.Get(&fromID, `SELECT id FROM carts WHERE owner = ?`, fromOwner); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if !fromID.Valid {
		return tx.Commit()
	}
	if err := tx.Get(&toID, `SELECT id FROM carts WHERE owner = ?`, toOwner); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// No cart on the target side yet: hand the guest cart over.
	if !toID.Valid {
		if _, err := tx.Exec(`UPDATE carts SET owner = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, toOwner, fromID.String); err != nil {
			return err
		}
		return tx.Commit()
	}

	type line struct {
		ShopID     string          `db:"shop_id"`
		ProductID  string          `db:"product_id"`
		Color      string          `db:"color_name"`
		Size       string          `db:"size_name"`
		Qty        int             `db:"qty"`
		PriceAtAdd decimal.Decimal `db:"price_at_add"`
		Selected   bool            `db:"selected"`
	}
	var lines []line
	if err := tx.Select(&lines, `
		SELECT p.shop_id, ci.product_id, ci.color_name, ci.size_name, ci.qty, ci.price_at_add,
		       COALESCE(cs.selected, 1) AS selected
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN cart_shops cs ON cs.cart_id = ci.cart_id AND cs.shop_id = p.shop_id
		WHERE ci.cart_id = ?`, fromID.String); err != nil {
		return err
	}
	for _, l := range lines {
		if err := upsertLine(tx, toID.String, CartLine{
			ShopID: l.ShopID, ProductID: l.ProductID, Color: l.Color, Size: l.Size,
			Qty: l.Qty, Price: l.PriceAtAdd,
		}, l.Selected); err != nil {
			return err
		}
	}

	// Drop guest cart (items and shop rows cascade)
	if _, err := tx.Exec(`DELETE FROM carts WHERE id = ?`, fromID.String); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, toID.String); err != nil {
		return err
	}
	return tx.Commit()
}
