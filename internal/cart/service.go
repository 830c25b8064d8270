package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkarmah/storefront/internal/backend"
	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/internal/quantity"
	"github.com/alkarmah/storefront/internal/screen"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/metrics"
	"github.com/alkarmah/storefront/pkg/types"
	"go.uber.org/multierr"
)

type productLoader interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type remoteCart interface {
	AddToCart(ctx context.Context, token string, in backend.CartMutation) (*backend.CartSnapshot, error)
	RemoveFromCart(ctx context.Context, token string, in backend.CartMutation) (*backend.CartSnapshot, error)
}

type sessionContext interface {
	Current() session.Snapshot
	RequireUser() (session.Credential, error)
	Invalidate(ctx context.Context)
}

// AddInput describes a product the shopper wants in the basket.
type AddInput struct {
	ProductID string
	Variant   enums.Variant
	Quantity  int
}

// RefreshResult reports the basket after stock levels were re-read.
// Products whose fetch failed keep their previous stock and appear in
// FailedProductIDs.
type RefreshResult struct {
	View             View     `json:"cart"`
	Clamped          []string `json:"clamped_line_ids"`
	FailedProductIDs []string `json:"failed_product_ids,omitempty"`
}

type productRefresh struct {
	productID string
	done      <-chan error
}

// Service applies shopper actions to the basket and mirrors additions and
// removals to the backend cart while signed in.
type Service interface {
	View(ctx context.Context) View
	Add(ctx context.Context, in AddInput) (LineView, error)
	Remove(ctx context.Context, lineID string) error
	UpdateQuantity(ctx context.Context, lineID, text string) (LineView, error)
	Increment(ctx context.Context, lineID string) (LineView, error)
	Decrement(ctx context.Context, lineID string) (LineView, error)
	SelectVariant(ctx context.Context, lineID string, variant enums.Variant) (LineView, error)
	Refresh(ctx context.Context) (RefreshResult, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Basket   *Basket
	Products productLoader
	Remote   remoteCart
	Sessions sessionContext
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

type service struct {
	basket   *Basket
	products productLoader
	remote   remoteCart
	sessions sessionContext
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Basket == nil {
		return nil, fmt.Errorf("basket required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote cart required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session context required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		basket:   params.Basket,
		products: params.Products,
		remote:   params.Remote,
		sessions: params.Sessions,
		logg:     logg,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) View(ctx context.Context) View {
	return s.basket.View().In(types.LanguageFromContext(ctx))
}

// Add reads the product's current record, validates the quantity against
// its stock and appends a line. While signed in the addition goes to the
// backend first and the returned cart replaces the local one.
func (s *service) Add(ctx context.Context, in AddInput) (LineView, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return LineView{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if in.Variant == "" {
		in.Variant = enums.Variant10kg
	}

	product, err := s.products.Get(ctx, in.ProductID)
	if err != nil {
		return LineView{}, err
	}
	if err := checkVariant(*product, in.Variant); err != nil {
		return LineView{}, err
	}
	if !product.InStock() {
		return LineView{}, s.rejected(ctx, quantity.OutOfStock(product.Stock))
	}
	if err := quantity.Validate(in.Quantity, product.Stock); err != nil {
		return LineView{}, s.rejected(ctx, err)
	}

	if !s.sessions.Current().Authenticated() {
		var view LineView
		err := screen.Apply(ctx, func() error {
			var addErr error
			view, addErr = s.basket.AddLine(*product, in.Variant, in.Quantity)
			return addErr
		})
		if err != nil {
			return LineView{}, err
		}
		s.mutated(ctx, "add", view.ID)
		return view.In(types.LanguageFromContext(ctx)), nil
	}

	cred, err := s.sessions.RequireUser()
	if err != nil {
		return LineView{}, err
	}
	snapshot, err := s.remote.AddToCart(ctx, cred.Token, backend.CartMutation{
		UserID:    cred.UserID,
		ProductID: product.ID,
		Quantity:  in.Quantity,
		Variant:   in.Variant.String(),
	})
	if err != nil {
		return LineView{}, s.remoteFailed(ctx, "add", err)
	}

	var view LineView
	err = screen.Apply(ctx, func() error {
		if snapshot.Authoritative() {
			if err := s.basket.Replace(itemsFrom(snapshot)); err != nil {
				return err
			}
			view = lastLineFor(s.basket.Lines(), product.ID, in.Variant)
			return nil
		}
		var addErr error
		view, addErr = s.basket.AddLine(*product, in.Variant, in.Quantity)
		return addErr
	})
	if err != nil {
		return LineView{}, err
	}
	s.mutated(ctx, "add", view.ID)
	return view.In(types.LanguageFromContext(ctx)), nil
}

// Remove drops a line. While signed in the product is removed from the
// backend cart first.
func (s *service) Remove(ctx context.Context, lineID string) error {
	line, err := s.basket.Line(lineID)
	if err != nil {
		return err
	}

	if !s.sessions.Current().Authenticated() {
		if err := screen.Apply(ctx, func() error {
			_, rmErr := s.basket.RemoveLine(lineID)
			return rmErr
		}); err != nil {
			return err
		}
		s.mutated(ctx, "remove", lineID)
		return nil
	}

	cred, err := s.sessions.RequireUser()
	if err != nil {
		return err
	}
	snapshot, err := s.remote.RemoveFromCart(ctx, cred.Token, backend.CartMutation{
		UserID:    cred.UserID,
		ProductID: line.ProductID,
	})
	if err != nil {
		return s.remoteFailed(ctx, "remove", err)
	}
	if err := screen.Apply(ctx, func() error {
		if snapshot.Authoritative() {
			return s.basket.Replace(itemsFrom(snapshot))
		}
		_, rmErr := s.basket.RemoveLine(lineID)
		return rmErr
	}); err != nil {
		return err
	}
	s.mutated(ctx, "remove", lineID)
	return nil
}

func (s *service) UpdateQuantity(ctx context.Context, lineID, text string) (LineView, error) {
	return s.edit(ctx, "update_quantity", lineID, func() (LineView, error) {
		return s.basket.UpdateQuantity(lineID, text)
	})
}

func (s *service) Increment(ctx context.Context, lineID string) (LineView, error) {
	return s.edit(ctx, "increment", lineID, func() (LineView, error) {
		return s.basket.Increment(lineID)
	})
}

func (s *service) Decrement(ctx context.Context, lineID string) (LineView, error) {
	return s.edit(ctx, "decrement", lineID, func() (LineView, error) {
		return s.basket.Decrement(lineID)
	})
}

func (s *service) SelectVariant(ctx context.Context, lineID string, variant enums.Variant) (LineView, error) {
	return s.edit(ctx, "select_variant", lineID, func() (LineView, error) {
		return s.basket.SelectVariant(lineID, variant)
	})
}

// Refresh re-reads every product in the basket concurrently and applies the
// new stock levels, clamping lines that no longer fit.
func (s *service) Refresh(ctx context.Context) (RefreshResult, error) {
	scope, ok := screen.FromContext(ctx)
	if !ok {
		scope = screen.NewScope(ctx, "cart.refresh")
		defer scope.Dispose()
	}

	seen := map[string]struct{}{}
	var pending []productRefresh
	var clamped []string
	for _, line := range s.basket.Lines() {
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}
		productID := line.ProductID
		pending = append(pending, productRefresh{productID: productID, done: screen.Go(scope,
			func(fetchCtx context.Context) (*catalog.Product, error) {
				return s.products.Get(fetchCtx, productID)
			},
			func(product *catalog.Product) error {
				views, err := s.basket.RefreshProduct(*product)
				if pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded) && product.InStock() {
					for _, v := range views {
						clamped = append(clamped, v.ID)
					}
					return nil
				}
				return err
			})})
	}

	var (
		errs   error
		failed []string
	)
	for _, p := range pending {
		if err := <-p.done; err != nil {
			failed = append(failed, p.productID)
			errs = multierr.Append(errs, err)
		}
	}
	if len(clamped) > 0 {
		s.metrics.IncCartMutation("clamp")
	}
	result := RefreshResult{View: s.basket.View().In(types.LanguageFromContext(ctx)), Clamped: clamped, FailedProductIDs: failed}
	if errs == nil {
		return result, nil
	}
	if len(failed) == len(pending) {
		return result, refreshFailed(errs, failed)
	}
	s.logg.Warn(s.logg.WithField(ctx, "failed_product_ids", failed), fmt.Sprintf("cart.refresh_partial: %v", errs))
	return result, nil
}

// refreshFailed keeps the code of the first failure, REMOTE_UNAVAILABLE when
// it carries none.
func refreshFailed(errs error, failed []string) error {
	code := pkgerrors.CodeRemoteUnavailable
	if typed := pkgerrors.As(errs); typed != nil {
		code = typed.Code()
	}
	return pkgerrors.Wrap(code, errs, "could not refresh the cart").
		WithDetails(map[string]any{"failed_product_ids": failed})
}

// edit applies a quantity or variant change through the screen scope. A
// rejected edit still returns the line as committed so the caller can
// revert its display.
func (s *service) edit(ctx context.Context, op, lineID string, fn func() (LineView, error)) (LineView, error) {
	var (
		view    LineView
		editErr error
	)
	if err := screen.Apply(ctx, func() error {
		view, editErr = fn()
		return nil
	}); err != nil {
		return LineView{}, err
	}
	view = view.In(types.LanguageFromContext(ctx))
	if editErr != nil {
		if pkgerrors.IsCode(editErr, pkgerrors.CodeNotFound) {
			return view, editErr
		}
		return view, s.rejected(s.logg.WithLineID(ctx, lineID), editErr)
	}
	s.mutated(ctx, op, lineID)
	return view, nil
}

func (s *service) rejected(ctx context.Context, err error) error {
	code := pkgerrors.As(err).Code()
	if code == pkgerrors.CodeInvalidQuantity || code == pkgerrors.CodeStockExceeded {
		s.metrics.IncQuantityRejection(strings.ToLower(string(code)))
		s.logg.Info(s.logg.WithField(ctx, "code", code), "cart.quantity_rejected")
	}
	return err
}

func (s *service) mutated(ctx context.Context, op, lineID string) {
	s.metrics.IncCartMutation(op)
	logCtx := s.logg.WithFields(s.logg.WithLineID(ctx, lineID), map[string]any{
		"op":    op,
		"total": s.basket.Total().String(),
	})
	s.logg.Info(logCtx, "cart.line_"+op)
}

func (s *service) remoteFailed(ctx context.Context, op string, err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		s.sessions.Invalidate(ctx)
	}
	s.logg.Error(s.logg.WithField(ctx, "op", op), "cart.remote_failed", err)
	return err
}

func itemsFrom(snapshot *backend.CartSnapshot) []Item {
	items := make([]Item, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		variant, err := enums.ParseVariant(it.Variant)
		if err != nil {
			variant = enums.Variant10kg
		}
		items = append(items, Item{
			ID:       it.ID,
			Product:  catalog.FromBackend(it.Product),
			Variant:  variant,
			Quantity: it.Quantity,
		})
	}
	return items
}

func lastLineFor(lines []LineView, productID string, variant enums.Variant) LineView {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].ProductID == productID && lines[i].Variant == variant {
			return lines[i]
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].ProductID == productID {
			return lines[i]
		}
	}
	return LineView{}
}
