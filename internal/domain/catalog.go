package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

type Shop struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SizeDetail is one size of a color variant with its own price and stock.
type SizeDetail struct {
	SizeName  string          `db:"size_name" json:"sizeName"`
	Price     decimal.Decimal `db:"price" json:"price"`
	InStorage int             `db:"in_storage" json:"inStorage"`
}

// ProductType is a color variant of a product.
type ProductType struct {
	ColorName string       `json:"colorName"`
	Details   []SizeDetail `json:"details"`
}

type Product struct {
	ID           string        `db:"id" json:"id"`
	ShopRef      string        `db:"shop_id" json:"shopRef"`
	CategoryRef  string        `db:"category_id" json:"categoryRef"`
	Name         string        `db:"name" json:"name"`
	Description  string        `db:"description" json:"description,omitempty"`
	ThumbnailURL string        `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	Types        []ProductType `db:"-" json:"types"`
	IsPublished  bool          `db:"is_published" json:"isPublished"`
	CreatedAt    string        `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt    string        `db:"updated_at" json:"updatedAt,omitempty"`
}

// TotalStock sums stock over every size of every color.
func (p Product) TotalStock() int {
	total := 0
	for _, t := range p.Types {
		for _, d := range t.Details {
			total += d.InStorage
		}
	}
	return total
}

// BasePrice is the price of the first size of the first color, or zero.
func (p Product) BasePrice() decimal.Decimal {
	if len(p.Types) == 0 || len(p.Types[0].Details) == 0 {
		return decimal.Zero
	}
	return p.Types[0].Details[0].Price
}

func (p Product) ColorNames() []string {
	out := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		out = append(out, t.ColorName)
	}
	return out
}

// SizeNames lists the sizes of the first color only.
func (p Product) SizeNames() []string {
	if len(p.Types) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Types[0].Details))
	for _, d := range p.Types[0].Details {
		out = append(out, d.SizeName)
	}
	return out
}

// Variant finds the size detail for a color/size pair.
func (p Product) Variant(color, size string) (SizeDetail, bool) {
	for _, t := range p.Types {
		if t.ColorName != color {
			continue
		}
		for _, d := range t.Details {
			if d.SizeName == size {
				return d, true
			}
		}
	}
	return SizeDetail{}, false
}

var ErrInvalidProduct = errors.New("invalid product")

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.CategoryRef) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	if len(p.Types) == 0 {
		return fmt.Errorf("%w: at least one variation is required", ErrInvalidProduct)
	}
	colors := map[string]bool{}
	for i, t := range p.Types {
		color := strings.TrimSpace(t.ColorName)
		if color == "" {
			return fmt.Errorf("%w: variation %d has no color", ErrInvalidProduct, i+1)
		}
		if colors[color] {
			return fmt.Errorf("%w: duplicate color %q", ErrInvalidProduct, color)
		}
		colors[color] = true
		if len(t.Details) == 0 {
			return fmt.Errorf("%w: color %q has no sizes", ErrInvalidProduct, color)
		}
		sizes := map[string]bool{}
		for _, d := range t.Details {
			size := strings.TrimSpace(d.SizeName)
			if size == "" {
				return fmt.Errorf("%w: color %q has an unnamed size", ErrInvalidProduct, color)
			}
			if sizes[size] {
				return fmt.Errorf("%w: duplicate size %q for color %q", ErrInvalidProduct, size, color)
			}
			sizes[size] = true
			if d.Price.IsNegative() {
				return fmt.Errorf("%w: negative price for %s/%s", ErrInvalidProduct, color, size)
			}
			if d.InStorage < 0 {
				return fmt.Errorf("%w: negative stock for %s/%s", ErrInvalidProduct, color, size)
			}
		}
	}
	return nil
}
