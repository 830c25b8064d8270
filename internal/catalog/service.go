package catalog

import (
	"context"
	"fmt"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/pricing"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/types"
)

type productSource interface {
	GetProduct(ctx context.Context, id string) (*backend.Product, error)
	ListProducts(ctx context.Context) ([]backend.Product, error)
	ListCategories(ctx context.Context) ([]backend.Category, error)
	ProductsByCategory(ctx context.Context, category string) ([]backend.Product, error)
}

// Service reads the catalog.
type Service interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) ([]Category, error)
	QuotePrice(ctx context.Context, id string, variant enums.Variant) (*PriceQuote, error)
}

// PriceQuote is the displayed price of one product variant.
type PriceQuote struct {
	ProductID string                 `json:"product_id"`
	Variant   enums.Variant          `json:"variant"`
	Price     string                 `json:"price"`
	Variants  []pricing.VariantPrice `json:"variants"`
}

type service struct {
	source productSource
	logg   *logger.Logger
}

// NewService builds a catalog service over the backend.
func NewService(source productSource, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("product source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{source: source, logg: logg}, nil
}

// List returns the catalog, or one category of it, after filtering.
func (s *service) List(ctx context.Context, filter Filter) ([]Product, error) {
	if filter.Sort == "" {
		filter.Sort = enums.ProductSortRelated
	}
	if !filter.Sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort %q", filter.Sort))
	}

	var (
		raw []backend.Product
		err error
	)
	if filter.ListsEverything() {
		raw, err = s.source.ListProducts(ctx)
	} else {
		raw, err = s.source.ProductsByCategory(ctx, filter.Category)
	}
	if err != nil {
		return nil, err
	}

	lang := types.LanguageFromContext(ctx)
	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, FromBackend(p).In(lang))
	}
	filtered := filter.Apply(products)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"category": filter.Category,
		"sort":     filter.Sort,
		"count":    len(filtered),
	})
	s.logg.Debug(logCtx, "catalog.listed")
	return filtered, nil
}

// Get returns one product.
func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	raw, err := s.source.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product := FromBackend(*raw).In(types.LanguageFromContext(ctx))
	return &product, nil
}

// Categories lists the categories, led by the pseudo category for the full catalog.
func (s *service) Categories(ctx context.Context) ([]Category, error) {
	raw, err := s.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	lang := types.LanguageFromContext(ctx)
	out := make([]Category, 0, len(raw)+1)
	out = append(out, Category{ID: "all", Name: allProductsName, DisplayName: allProductsName.In(lang)})
	for _, c := range raw {
		out = append(out, Category{ID: c.ID, Name: c.Name, DisplayName: c.Name.In(lang)})
	}
	return out, nil
}

// QuotePrice prices a product in the requested variant.
func (s *service) QuotePrice(ctx context.Context, id string, variant enums.Variant) (*PriceQuote, error) {
	if !variant.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variant %q", variant))
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Offers(variant) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product is not sold as %s", variant))
	}
	return &PriceQuote{
		ProductID: product.ID,
		Variant:   variant,
		Price:     product.PriceOf(variant).StringFixed(2),
		Variants:  pricing.Quote(product.Price),
	}, nil
}
