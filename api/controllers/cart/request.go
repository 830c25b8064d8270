package cart

import (
	cartsvc "github.com/alkarmah/storefront/internal/cart"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
)

type addLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Variant   string `json:"variant"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

func (r addLineRequest) toInput() (cartsvc.AddInput, error) {
	variant, err := parseVariant(r.Variant)
	if err != nil {
		return cartsvc.AddInput{}, err
	}
	// required only guards presence; zero and negatives are classified by the editor.
	return cartsvc.AddInput{ProductID: r.ProductID, Variant: variant, Quantity: *r.Quantity}, nil
}

// updateQuantityRequest carries the raw text of the quantity field so the
// editor can reject values that are not whole numbers.
type updateQuantityRequest struct {
	Quantity string `json:"quantity"`
}

type selectVariantRequest struct {
	Variant string `json:"variant" validate:"required"`
}

func parseVariant(raw string) (enums.Variant, error) {
	if raw == "" {
		return enums.Variant10kg, nil
	}
	variant, err := enums.ParseVariant(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant").WithDetails(map[string]any{"field": "variant"})
	}
	return variant, nil
}
