// Package wishlist manages the signed-in user's saved products.
package wishlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/internal/session"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
)

type wishlistAPI interface {
	Wishlist(ctx context.Context, token, userID string) ([]backend.Product, error)
	AddToWishlist(ctx context.Context, token string, in backend.WishlistMutation) error
	RemoveFromWishlist(ctx context.Context, token string, in backend.WishlistMutation) error
}

type sessionContext interface {
	RequireUser() (session.Credential, error)
	Invalidate(ctx context.Context)
}

// Service exposes business rules for wishlist management.
type Service interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, productID string) error
}

type service struct {
	api      wishlistAPI
	sessions sessionContext
	logg     *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(api wishlistAPI, sessions sessionContext, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist api is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session context is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{api: api, sessions: sessions, logg: logg}, nil
}

// List returns the wishlisted products.
func (s *service) List(ctx context.Context) ([]catalog.Product, error) {
	cred, err := s.sessions.RequireUser()
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Wishlist(ctx, cred.Token, cred.UserID)
	if err != nil {
		return nil, s.failed(ctx, err)
	}
	out := make([]catalog.Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, catalog.FromBackend(p))
	}
	return out, nil
}

// Add saves a product to the wishlist.
func (s *service) Add(ctx context.Context, productID string) error {
	return s.mutate(ctx, productID, "wishlist.added", s.api.AddToWishlist)
}

// Remove drops a product from the wishlist.
func (s *service) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, productID, "wishlist.removed", s.api.RemoveFromWishlist)
}

func (s *service) mutate(ctx context.Context, productID, event string, call func(context.Context, string, backend.WishlistMutation) error) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	cred, err := s.sessions.RequireUser()
	if err != nil {
		return err
	}
	if err := call(ctx, cred.Token, backend.WishlistMutation{UserID: cred.UserID, ProductID: productID}); err != nil {
		return s.failed(ctx, err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"user_id": cred.UserID, "product_id": productID}), event)
	return nil
}

func (s *service) failed(ctx context.Context, err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		s.sessions.Invalidate(ctx)
	}
	return fmt.Errorf("wishlist: %w", err)
}
