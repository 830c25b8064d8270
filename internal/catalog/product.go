// Package catalog exposes the product catalog read from the backend.
package catalog

import (
	"strings"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/pricing"
	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/alkarmah/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// AllProducts is the pseudo category that lists everything.
const AllProducts = "All products"

var allProductsName = types.LocalizedText{
	enums.LanguageEnglish: AllProducts,
	enums.LanguageArabic:  "جميع المنتجات",
}

// Product is the read-only product record shared by the catalog and cart.
// Price is the reference (10kg) price.
type Product struct {
	ID          string              `json:"id"`
	Name        types.LocalizedText `json:"name"`
	DisplayName string              `json:"display_name"`
	Description types.LocalizedText `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	Images      []string            `json:"images"`
	Rating      *float64            `json:"rating,omitempty"`
	RatingCount string              `json:"rating_count,omitempty"`
	Category    string              `json:"category,omitempty"`
	Variants    []enums.Variant     `json:"variants"`
}

// FromBackend maps the wire record onto a Product. Unknown variant labels are
// dropped; a product listing none offers the full set.
func FromBackend(in backend.Product) Product {
	variants := make([]enums.Variant, 0, len(in.Variants))
	for _, raw := range in.Variants {
		if v, err := enums.ParseVariant(raw); err == nil {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		variants = enums.Variants()
	}
	return Product{
		ID:          in.ID,
		Name:        in.Name,
		DisplayName: in.Name.English(),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      append([]string(nil), in.Images...),
		Rating:      in.Rating,
		RatingCount: string(in.RatingCount),
		Category:    strings.TrimSpace(string(in.Category)),
		Variants:    variants,
	}
}

// In returns the product with DisplayName in lang.
func (p Product) In(lang enums.Language) Product {
	p.DisplayName = p.Name.In(lang)
	return p
}

// Matches reports whether any rendition of the name contains query, which
// must already be lower case.
func (p Product) Matches(query string) bool {
	for _, name := range p.Name {
		if strings.Contains(strings.ToLower(name), query) {
			return true
		}
	}
	return false
}

// PriceOf returns the price of the product in variant v.
func (p Product) PriceOf(v enums.Variant) decimal.Decimal {
	return pricing.Price(p.Price, v)
}

// Offers reports whether the product is sold in variant v.
func (p Product) Offers(v enums.Variant) bool {
	for _, candidate := range p.Variants {
		if candidate == v {
			return true
		}
	}
	return false
}

// InStock reports whether at least one unit can be ordered.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Thumbnail returns the first image, if any.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a catalog grouping as listed to shoppers.
type Category struct {
	ID          string              `json:"id"`
	Name        types.LocalizedText `json:"name"`
	DisplayName string              `json:"display_name"`
}
