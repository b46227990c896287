package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	memory := dsn == ":memory:"
	if !memory && !strings.Contains(dsn, "_pragma=") {
		// Pragmas are per connection; let the driver apply it to every pooled one.
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per connection.
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog if DB is empty (shops/categories/products)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Shops
CREATE TABLE IF NOT EXISTS shops(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE RESTRICT,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT,
  thumbnail_url TEXT,
  is_published INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_shop       ON products(shop_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Color variants and their sizes
CREATE TABLE IF NOT EXISTS product_types(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  color_name TEXT NOT NULL,
  position INTEGER NOT NULL,
  UNIQUE(product_id, color_name)
);

CREATE TABLE IF NOT EXISTS product_type_details(
  type_id INTEGER NOT NULL REFERENCES product_types(id) ON DELETE CASCADE,
  size_name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  in_storage INTEGER NOT NULL DEFAULT 0 CHECK (in_storage >= 0),
  position INTEGER NOT NULL,
  PRIMARY KEY(type_id, size_name)
);

-- Carts (owner is a user id once logged in, the session id otherwise)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  owner TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_shops(
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  shop_id TEXT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  selected INTEGER NOT NULL DEFAULT 1,
  PRIMARY KEY(cart_id, shop_id)
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  color_name TEXT NOT NULL,
  size_name  TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id, color_name, size_name)
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  avatar_url TEXT,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "seed.catalog", nil)

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO shops(id,name) VALUES
	  ('shop-saigon','Saigon Threads'),
	  ('shop-hanoi','Hanoi Outfitters')`)

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('cat-shirts','Shirts'),
	  ('cat-pants','Pants'),
	  ('cat-shoes','Shoes')`)

	tx.MustExec(`INSERT INTO products(id,shop_id,category_id,name,description,thumbnail_url,is_published,created_at) VALUES
	  ('p-linen-shirt','shop-saigon','cat-shirts','Linen Shirt','Breathable summer shirt','/media/p-linen-shirt.jpg',1,'2024-03-01 09:00:00'),
	  ('p-chino','shop-saigon','cat-pants','Slim Chino','Cotton twill chino','/media/p-chino.jpg',1,'2024-03-05 09:00:00'),
	  ('p-canvas-shoe','shop-hanoi','cat-shoes','Canvas Sneaker','Low-top canvas sneaker','/media/p-canvas-shoe.jpg',0,'2024-04-10 09:00:00')`)

	// Variants: (product, color, position) then sizes per color.
	type size struct {
		name  string
		price int64
		stock int
	}
	variants := []struct {
		product, color string
		sizes          []size
	}{
		{"p-linen-shirt", "White", []size{{"M", 250000, 5}, {"L", 250000, 3}}},
		{"p-linen-shirt", "Navy", []size{{"M", 260000, 2}, {"L", 260000, 0}}},
		{"p-chino", "Khaki", []size{{"30", 420000, 4}, {"32", 420000, 6}}},
		{"p-canvas-shoe", "Black", []size{{"41", 590000, 2}, {"42", 590000, 1}}},
	}
	pos := map[string]int{}
	for _, v := range variants {
		res, err := tx.Exec(`INSERT INTO product_types(product_id,color_name,position) VALUES(?,?,?)`, v.product, v.color, pos[v.product])
		if err != nil {
			return err
		}
		pos[v.product]++
		typeID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for i, s := range v.sizes {
			tx.MustExec(`INSERT INTO product_type_details(type_id,size_name,price,in_storage,position) VALUES(?,?,?,?,?)`,
				typeID, s.name, s.price, s.stock, i)
		}
	}

	return tx.Commit()
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Phone, Role, Hash string
	}
	mk := func(id, email, name, phone, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Phone: phone, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-lan", "lan@storefront.test", "Lan", "0901000001", "USER", "Passw0rd!"),
		mk("u-minh", "minh@storefront.test", "Minh", "0901000002", "USER", "Passw0rd!"),
		mk("u-admin", "admin@storefront.test", "Admin", "", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,phone,password_hash,role)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Phone, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
