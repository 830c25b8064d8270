package controllers

import (
	"net/http"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/api/validators"
	"github.com/alkarmah/storefront/internal/checkout"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

type checkoutRequest struct {
	DeliveryLocation string `json:"delivery_location" validate:"required"`
}

// CheckoutPreview shows the basket total, the delivery fee and their sum.
func CheckoutPreview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Preview(r.Context()))
	}
}

// Checkout places the order for the current basket.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Submit(r.Context(), payload.DeliveryLocation)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
