package orders

import (
	"net/http"

	"github.com/alkarmah/storefront/api/responses"
	ordersvc "github.com/alkarmah/storefront/internal/orders"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

// List returns the signed-in user's orders, newest first.
func List(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}
