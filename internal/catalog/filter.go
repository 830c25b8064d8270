package catalog

import (
	"sort"
	"strings"

	"github.com/alkarmah/storefront/pkg/enums"
)

// Filter narrows and orders a product listing.
type Filter struct {
	Category  string
	Query     string
	Sort      enums.ProductSort
	MinRating *float64
}

// ListsEverything reports whether the category selects the whole catalog.
func (f Filter) ListsEverything() bool {
	c := strings.TrimSpace(f.Category)
	return c == "" || strings.EqualFold(c, AllProducts) || strings.EqualFold(c, "all")
}

// Apply filters by name, in any language, and rating and then sorts. The input slice is not
// modified.
func (f Filter) Apply(products []Product) []Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if query != "" && !p.Matches(query) {
			continue
		}
		if f.MinRating != nil && (p.Rating == nil || *p.Rating < *f.MinRating) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case enums.ProductSortRatingDesc:
		sort.SliceStable(out, func(i, j int) bool { return rating(out[i]) > rating(out[j]) })
	case enums.ProductSortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.ProductSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}

func rating(p Product) float64 {
	if p.Rating == nil {
		return -1
	}
	return *p.Rating
}
