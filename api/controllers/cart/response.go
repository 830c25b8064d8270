package cart

import cartsvc "github.com/alkarmah/storefront/internal/cart"

type lineResponse struct {
	Line cartsvc.LineView `json:"line"`
	Cart cartsvc.View     `json:"cart"`
}
