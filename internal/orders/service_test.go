package orders

import (
	"context"
	"testing"
	"time"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

type stubAPI struct {
	orders []backend.Order
	err    error
	user   string
}

func (s *stubAPI) ListOrders(_ context.Context, _ string, userID string) ([]backend.Order, error) {
	s.user = userID
	return s.orders, s.err
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

func TestListMapsAndSortsOrders(t *testing.T) {
	t.Parallel()

	now := time.Now()
	api := &stubAPI{orders: []backend.Order{
		{ID: "old", Status: "Delivered", TotalAmount: decimal.NewFromInt(90), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "new", Status: "Shipped", TotalAmount: decimal.NewFromInt(290), CreatedAt: now, Items: []backend.OrderLine{
			{Product: backend.Product{ID: "p1", Name: types.LocalizedText{enums.LanguageEnglish: "Barley"}, Images: backend.Images{"img"}}, Quantity: 20, Price: decimal.NewFromInt(12)},
		}},
		{ID: "odd", Status: "Lost", CreatedAt: now.Add(-time.Hour)},
	}}
	svc, err := NewService(api, &stubSessions{cred: &session.Credential{UserID: "u-1"}}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.user != "u-1" {
		t.Fatalf("expected user u-1, got %q", api.user)
	}
	if len(got) != 3 || got[0].ID != "new" || got[1].ID != "odd" || got[2].ID != "old" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Status != enums.OrderStatusShipped || !got[0].Open {
		t.Fatalf("unexpected status: %+v", got[0])
	}
	if got[0].Items[0].ProductName != "Barley" || got[0].Items[0].Image != "img" {
		t.Fatalf("unexpected item: %+v", got[0].Items[0])
	}
	if got[1].Status != enums.OrderStatusPending {
		t.Fatalf("unknown status should fall back to pending, got %s", got[1].Status)
	}
	if got[2].Open {
		t.Fatalf("delivered orders are closed")
	}
}

func TestListRequiresSignIn(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubAPI{}, &stubSessions{}, nil)
	if _, err := svc.List(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestListInvalidatesOnRejectedToken(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{cred: &session.Credential{UserID: "u-1"}}
	svc, _ := NewService(&stubAPI{err: pkgerrors.New(pkgerrors.CodeUnauthenticated, "expired")}, sessions, nil)
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !sessions.invalidated {
		t.Fatal("expected invalidation")
	}
}
