package cart

import (
	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/alkarmah/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// LineView is a read-only copy of a line as displayed.
type LineView struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image,omitempty"`
	Variant     enums.Variant   `json:"variant"`
	Quantity    int             `json:"quantity"`
	Display     string          `json:"display"`
	Stock       int             `json:"stock"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`

	names types.LocalizedText
}

// In returns the view with the product name in lang.
func (v LineView) In(lang enums.Language) LineView {
	if len(v.names) > 0 {
		v.ProductName = v.names.In(lang)
	}
	return v
}

// View is the whole basket as displayed.
type View struct {
	Lines []LineView      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// In returns a copy of the view with product names in lang.
func (v View) In(lang enums.Language) View {
	lines := make([]LineView, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = l.In(lang)
	}
	v.Lines = lines
	return v
}

func viewOf(l *Line) LineView {
	return LineView{
		ID:          l.ID,
		ProductID:   l.Product.ID,
		ProductName: l.Product.Name.English(),
		Image:       l.Product.Thumbnail(),
		Variant:     l.Variant,
		Quantity:    l.Quantity(),
		Display:     l.editor.Display(),
		Stock:       l.editor.Stock(),
		UnitPrice:   l.UnitPrice(),
		Total:       l.Total(),
		names:       l.Product.Name,
	}
}
