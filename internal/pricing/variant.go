// Package pricing maps a product's reference price onto its bulk variants.
package pricing

import (
	"fmt"

	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Variants are bulk multiples of the 10kg reference weight.
var multipliers = map[enums.Variant]int64{
	enums.Variant10kg: 1,
	enums.Variant20kg: 2,
	enums.Variant30kg: 3,
}

// Multiplier returns the fixed factor for v. An unknown variant is a
// programming error and panics.
func Multiplier(v enums.Variant) int64 {
	m, ok := multipliers[v]
	if !ok {
		panic(fmt.Sprintf("pricing: no multiplier for variant %q", v))
	}
	return m
}

// Price returns the displayed price of variant v for a product whose
// reference (10kg) price is base.
func Price(base decimal.Decimal, v enums.Variant) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(Multiplier(v)))
}

// Quote lists the price of every variant in display order.
func Quote(base decimal.Decimal) []VariantPrice {
	variants := enums.Variants()
	out := make([]VariantPrice, 0, len(variants))
	for _, v := range variants {
		out = append(out, VariantPrice{Variant: v, Price: Price(base, v)})
	}
	return out
}

// VariantPrice pairs a variant with its computed price.
type VariantPrice struct {
	Variant enums.Variant   `json:"variant"`
	Price   decimal.Decimal `json:"price"`
}
