package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/api/validators"
	cartsvc "github.com/alkarmah/storefront/internal/cart"
	"github.com/alkarmah/storefront/internal/quantity"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

// CartFetch returns the basket lines and total.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.View(r.Context()))
	}
}

// CartAddLine adds a product variant to the basket.
func CartAddLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.Add(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lineResponse{Line: line, Cart: svc.View(r.Context())})
	}
}

func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Remove(r.Context(), chi.URLParam(r, "lineId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(r.Context()))
	}
}

// CartUpdateQuantity commits the typed quantity of a line. Rejected input
// answers 422 with the line as it stands after the revert or clamp.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := chi.URLParam(r, "lineId")
		writeLineEdit(w, r, svc, logg, func(ctx context.Context) (cartsvc.LineView, error) {
			return svc.UpdateQuantity(ctx, lineID, payload.Quantity)
		})
	}
}

func CartIncrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lineID := chi.URLParam(r, "lineId")
		writeLineEdit(w, r, svc, logg, func(ctx context.Context) (cartsvc.LineView, error) {
			return svc.Increment(ctx, lineID)
		})
	}
}

func CartDecrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lineID := chi.URLParam(r, "lineId")
		writeLineEdit(w, r, svc, logg, func(ctx context.Context) (cartsvc.LineView, error) {
			return svc.Decrement(ctx, lineID)
		})
	}
}

func CartSelectVariant(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload selectVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variant, err := parseVariant(payload.Variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := chi.URLParam(r, "lineId")
		writeLineEdit(w, r, svc, logg, func(ctx context.Context) (cartsvc.LineView, error) {
			return svc.SelectVariant(ctx, lineID, variant)
		})
	}
}

// CartRefresh re-reads stock for every line and clamps lines that no longer fit.
// It fails only when no product could be refreshed; partial failures are
// listed in failed_product_ids.
func CartRefresh(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		result, err := svc.Refresh(r.Context())
		if err != nil {
			responses.WriteErrorWith(r.Context(), logg, w, err, map[string]any{"cart": result.View})
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func writeLineEdit(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger, edit func(context.Context) (cartsvc.LineView, error)) {
	line, err := edit(r.Context())
	if err != nil {
		if isQuantityRejection(err) {
			maxAllowed, ok := quantity.MaxAllowed(err)
			if !ok {
				maxAllowed = line.Stock
			}
			responses.WriteErrorWith(r.Context(), logg, w, err, map[string]any{
				"line":    line,
				"cart":    svc.View(r.Context()),
				"display": line.Display,
				"max":     maxAllowed,
			})
			return
		}
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, lineResponse{Line: line, Cart: svc.View(r.Context())})
}

func isQuantityRejection(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeInvalidQuantity) || pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded)
}
