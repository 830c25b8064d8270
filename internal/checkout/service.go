package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/cart"
	"github.com/alkarmah/storefront/internal/screen"
	"github.com/alkarmah/storefront/internal/session"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/metrics"
	"github.com/alkarmah/storefront/pkg/types"
)

type orderSubmitter interface {
	SubmitOrder(ctx context.Context, token string, in backend.OrderRequest) (*backend.Order, error)
}

type sessionContext interface {
	RequireUser() (session.Credential, error)
	Invalidate(ctx context.Context)
}

// Preview is the checkout screen before submission.
type Preview struct {
	Lines     []cart.LineView `json:"lines"`
	Summary   Summary         `json:"summary"`
	Currency  string          `json:"currency"`
	Locations []string        `json:"delivery_locations"`
}

// Receipt confirms a placed order.
type Receipt struct {
	OrderID          string  `json:"order_id"`
	Status           string  `json:"status"`
	DeliveryLocation string  `json:"delivery_location"`
	Summary          Summary `json:"summary"`
}

// Service prices and places orders for the basket.
type Service interface {
	Preview(ctx context.Context) Preview
	Submit(ctx context.Context, location string) (*Receipt, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Basket    *cart.Basket
	Composer  *Composer
	Orders    orderSubmitter
	Sessions  sessionContext
	Currency  string
	Locations []string
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
}

type service struct {
	basket    *cart.Basket
	composer  *Composer
	orders    orderSubmitter
	sessions  sessionContext
	currency  string
	locations []string
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Basket == nil {
		return nil, fmt.Errorf("basket required")
	}
	if params.Composer == nil {
		return nil, fmt.Errorf("composer required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session context required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	locations := make([]string, 0, len(params.Locations))
	for _, loc := range params.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			locations = append(locations, loc)
		}
	}
	return &service{
		basket:    params.Basket,
		composer:  params.Composer,
		orders:    params.Orders,
		sessions:  params.Sessions,
		currency:  params.Currency,
		locations: locations,
		logg:      logg,
		metrics:   params.Metrics,
	}, nil
}

// Preview returns the lines and the amount payable, read fresh.
func (s *service) Preview(ctx context.Context) Preview {
	view := s.basket.View().In(types.LanguageFromContext(ctx))
	return Preview{
		Lines: view.Lines,
		Summary: Summary{
			BasketTotal: view.Total,
			DeliveryFee: s.composer.DeliveryFee(),
			Total:       s.composer.Total(view.Total),
		},
		Currency:  s.currency,
		Locations: append([]string(nil), s.locations...),
	}
}

// Submit places an order for the whole basket. The basket is cleared only
// after the backend accepted the order, and only while the submitting screen
// is still open; otherwise the order id comes back in a STALE_RESPONSE.
func (s *service) Submit(ctx context.Context, location string) (*Receipt, error) {
	cred, err := s.sessions.RequireUser()
	if err != nil {
		s.metrics.IncCheckout("unauthenticated")
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, cred.UserID)

	location, err = s.resolveLocation(location)
	if err != nil {
		s.metrics.IncCheckout("invalid")
		return nil, err
	}

	view := s.basket.View()
	if len(view.Lines) == 0 {
		s.metrics.IncCheckout("invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}

	summary := Summary{
		BasketTotal: view.Total,
		DeliveryFee: s.composer.DeliveryFee(),
		Total:       s.composer.Total(view.Total),
	}
	req := backend.OrderRequest{
		User:             cred.UserID,
		Items:            make([]backend.OrderItem, 0, len(view.Lines)),
		TotalAmount:      summary.Total,
		DeliveryLocation: location,
	}
	for _, line := range view.Lines {
		req.Items = append(req.Items, backend.OrderItem{
			Product:  line.ProductID,
			Quantity: line.Quantity,
			Variant:  line.Variant.String(),
			Price:    line.UnitPrice,
		})
	}

	order, err := s.orders.SubmitOrder(ctx, cred.Token, req)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
			s.sessions.Invalidate(ctx)
		}
		s.metrics.IncCheckout("failed")
		s.logg.Error(ctx, "checkout.submit_failed", err)
		return nil, err
	}

	s.metrics.IncCheckout("submitted")
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"total":    summary.Total.String(),
		"lines":    len(req.Items),
	})
	if err := screen.Apply(ctx, func() error {
		s.basket.Clear()
		return nil
	}); err != nil {
		s.logg.Warn(logCtx, "checkout.submitted_after_screen_closed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeStaleResponse, err, "order was placed after the screen closed").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	s.logg.Info(logCtx, "checkout.submitted")

	return &Receipt{
		OrderID:          order.ID,
		Status:           order.Status,
		DeliveryLocation: location,
		Summary:          summary,
	}, nil
}

func (s *service) resolveLocation(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery location is required")
	}
	if len(s.locations) == 0 {
		return raw, nil
	}
	for _, loc := range s.locations {
		if strings.EqualFold(loc, raw) {
			return loc, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "we do not deliver to this location").
		WithDetails(map[string]any{"allowed": s.locations})
}
