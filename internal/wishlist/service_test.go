package wishlist

import (
	"context"
	"testing"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/session"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubAPI struct {
	products []backend.Product
	err      error
	added    []backend.WishlistMutation
	removed  []backend.WishlistMutation
}

func (s *stubAPI) Wishlist(context.Context, string, string) ([]backend.Product, error) {
	return s.products, s.err
}

func (s *stubAPI) AddToWishlist(_ context.Context, _ string, in backend.WishlistMutation) error {
	s.added = append(s.added, in)
	return s.err
}

func (s *stubAPI) RemoveFromWishlist(_ context.Context, _ string, in backend.WishlistMutation) error {
	s.removed = append(s.removed, in)
	return s.err
}

type stubSessions struct {
	cred        *session.Credential
	invalidated bool
}

func (s *stubSessions) RequireUser() (session.Credential, error) {
	if s.cred == nil {
		return session.Credential{}, pkgerrors.New(pkgerrors.CodeUnauthenticated, "sign in")
	}
	return *s.cred, nil
}

func (s *stubSessions) Invalidate(context.Context) { s.invalidated = true }

func TestWishlistRoundTrip(t *testing.T) {
	t.Parallel()

	api := &stubAPI{products: []backend.Product{{ID: "p1", Price: decimal.NewFromInt(3)}}}
	svc, err := NewService(api, &stubSessions{cred: &session.Credential{UserID: "u-1", Token: "t"}}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != "p1" {
		t.Fatalf("unexpected list %+v %v", list, err)
	}
	if err := svc.Add(context.Background(), " p2 "); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(context.Background(), "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if api.added[0] != (backend.WishlistMutation{UserID: "u-1", ProductID: "p2"}) || api.removed[0].ProductID != "p1" {
		t.Fatalf("unexpected calls: %+v %+v", api.added, api.removed)
	}
}

func TestWishlistRequiresSignInAndProduct(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubAPI{}, &stubSessions{}, nil)
	if err := svc.Add(context.Background(), "p1"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := svc.Add(context.Background(), " "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWishlistRejectedTokenInvalidates(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{cred: &session.Credential{UserID: "u-1"}}
	svc, _ := NewService(&stubAPI{err: pkgerrors.New(pkgerrors.CodeUnauthenticated, "expired")}, sessions, nil)
	if _, err := svc.List(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if !sessions.invalidated {
		t.Fatal("expected invalidation")
	}
}
