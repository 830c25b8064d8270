package enums

import (
	"fmt"
	"strings"
)

// ProductSort selects the ordering applied to catalog listings.
type ProductSort string

const (
	ProductSortRelated    ProductSort = "related"
	ProductSortRatingDesc ProductSort = "rating_desc"
	ProductSortPriceAsc   ProductSort = "price_asc"
	ProductSortPriceDesc  ProductSort = "price_desc"
)

var validProductSorts = []ProductSort{
	ProductSortRelated,
	ProductSortRatingDesc,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort; blank means related.
func ParseProductSort(value string) (ProductSort, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ProductSortRelated, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
