// Package orders lists the signed-in user's order history.
package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type historyAPI interface {
	ListOrders(ctx context.Context, token, userID string) ([]backend.Order, error)
}

type sessionContext interface {
	RequireUser() (session.Credential, error)
	Invalidate(ctx context.Context)
}

// Item is one line of a past order.
type Item struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Order is a past order as listed.
type Order struct {
	ID          string            `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	Open        bool              `json:"open"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []Item            `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Service exposes the order history.
type Service interface {
	List(ctx context.Context) ([]Order, error)
}

type service struct {
	api      historyAPI
	sessions sessionContext
	logg     *logger.Logger
}

// NewService builds an order history service.
func NewService(api historyAPI, sessions sessionContext, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("order history api required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session context required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{api: api, sessions: sessions, logg: logg}, nil
}

// List returns the user's orders, newest first.
func (s *service) List(ctx context.Context) ([]Order, error) {
	cred, err := s.sessions.RequireUser()
	if err != nil {
		return nil, err
	}
	raw, err := s.api.ListOrders(ctx, cred.Token, cred.UserID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
			s.sessions.Invalidate(ctx)
		}
		return nil, err
	}

	out := make([]Order, 0, len(raw))
	for _, o := range raw {
		status, err := enums.ParseOrderStatus(o.Status)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "order_id", o.ID), fmt.Sprintf("orders.unknown_status: %q", o.Status))
			status = enums.OrderStatusPending
		}
		items := make([]Item, 0, len(o.Items))
		for _, it := range o.Items {
			image := ""
			if len(it.Product.Images) > 0 {
				image = it.Product.Images[0]
			}
			items = append(items, Item{
				ProductID:   it.Product.ID,
				ProductName: it.Product.Name.Localize(ctx),
				Image:       image,
				Quantity:    it.Quantity,
				Price:       it.Price,
			})
		}
		out = append(out, Order{
			ID:          o.ID,
			Status:      status,
			Open:        status.IsOpen(),
			TotalAmount: o.TotalAmount,
			Items:       items,
			CreatedAt:   o.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
