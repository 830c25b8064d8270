package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/api/validators"
	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

const maxSearchLength = 100

// ProductList lists the catalog, filtered by category, search text and rating.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func parseProductFilter(r *http.Request) (catalog.Filter, error) {
	sort, err := enums.ParseProductSort(validators.QueryString(r, "sort", 32))
	if err != nil {
		return catalog.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"field": "sort"})
	}
	filter := catalog.Filter{
		Category: validators.QueryString(r, "category", maxSearchLength),
		Query:    validators.QueryString(r, "q", maxSearchLength),
		Sort:     sort,
	}
	if strings.TrimSpace(r.URL.Query().Get("min_rating")) != "" {
		rating, err := validators.ParseQueryFloat(r, "min_rating", 0, 0, 5)
		if err != nil {
			return catalog.Filter{}, err
		}
		filter.MinRating = &rating
	}
	return filter, nil
}

func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductPrice quotes the displayed price of a variant; blank means 10kg.
func ProductPrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		variant := enums.Variant10kg
		if raw := validators.QueryString(r, "variant", 16); raw != "" {
			parsed, err := enums.ParseVariant(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant").WithDetails(map[string]any{"field": "variant"}))
				return
			}
			variant = parsed
		}

		quote, err := svc.QuotePrice(r.Context(), chi.URLParam(r, "productId"), variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}
