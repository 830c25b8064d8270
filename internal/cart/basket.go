// Package cart holds the basket of the active session and reconciles it with
// the backend cart.
package cart

import (
	"fmt"
	"sync"

	"github.com/alkarmah/storefront/internal/catalog"
	"github.com/alkarmah/storefront/internal/quantity"
	"github.com/alkarmah/storefront/pkg/enums"
	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product/variant pair in the basket.
type Line struct {
	ID      string
	Product catalog.Product
	Variant enums.Variant
	editor  *quantity.Editor
}

// Quantity returns the committed quantity.
func (l *Line) Quantity() int {
	return l.editor.Committed()
}

// UnitPrice is the product price scaled by the variant multiplier.
func (l *Line) UnitPrice() decimal.Decimal {
	return l.Product.PriceOf(l.Variant)
}

// Total is UnitPrice times Quantity.
func (l *Line) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity())))
}

// Item seeds a basket line from an authoritative cart snapshot.
type Item struct {
	ID       string
	Product  catalog.Product
	Variant  enums.Variant
	Quantity int
}

// Basket is the ordered set of cart lines. Totals are derived from the
// current lines on every read, so they are never stale.
type Basket struct {
	mu    sync.RWMutex
	lines []*Line
	newID func() string
}

// NewBasket returns an empty basket.
func NewBasket() *Basket {
	return &Basket{newID: uuid.NewString}
}

// AddLine validates quantity against the product's stock and appends a new
// line. Adding the same product and variant twice yields two lines.
func (b *Basket) AddLine(product catalog.Product, variant enums.Variant, qty int) (LineView, error) {
	if err := checkVariant(product, variant); err != nil {
		return LineView{}, err
	}
	editor, err := quantity.New(product.Stock, qty)
	if err != nil {
		return LineView{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	line := &Line{ID: b.newID(), Product: product, Variant: variant, editor: editor}
	b.lines = append(b.lines, line)
	return viewOf(line), nil
}

// RemoveLine deletes a line unconditionally.
func (b *Basket) RemoveLine(lineID string) (LineView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexLocked(lineID)
	if idx < 0 {
		return LineView{}, lineNotFound(lineID)
	}
	removed := b.lines[idx]
	b.lines = append(b.lines[:idx], b.lines[idx+1:]...)
	return viewOf(removed), nil
}

// UpdateQuantity commits edited text on a line. A rejected edit leaves the
// line unchanged; an edit above stock clamps to stock. The returned view
// always reflects the committed state.
func (b *Basket) UpdateQuantity(lineID, text string) (LineView, error) {
	return b.mutate(lineID, func(l *Line) error {
		_, err := l.editor.Commit(text)
		return err
	})
}

// Increment raises a line's quantity by one.
func (b *Basket) Increment(lineID string) (LineView, error) {
	return b.mutate(lineID, func(l *Line) error {
		_, err := l.editor.Increment()
		return err
	})
}

// Decrement lowers a line's quantity by one; at 1 it is rejected.
func (b *Basket) Decrement(lineID string) (LineView, error) {
	return b.mutate(lineID, func(l *Line) error {
		_, err := l.editor.Decrement()
		return err
	})
}

// SelectVariant reprices a line. The quantity is untouched.
func (b *Basket) SelectVariant(lineID string, variant enums.Variant) (LineView, error) {
	return b.mutate(lineID, func(l *Line) error {
		if err := checkVariant(l.Product, variant); err != nil {
			return err
		}
		l.Variant = variant
		return nil
	})
}

// RefreshProduct applies a freshly fetched product record to every line of
// that product, clamping quantities that no longer fit the stock.
func (b *Basket) RefreshProduct(product catalog.Product) ([]LineView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		views    []LineView
		firstErr error
	)
	for _, l := range b.lines {
		if l.Product.ID != product.ID {
			continue
		}
		if err := l.editor.SetStock(product.Stock); err != nil && firstErr == nil {
			firstErr = err
		}
		if product.InStock() {
			l.Product = product
		}
		views = append(views, viewOf(l))
	}
	return views, firstErr
}

// Line returns a view of one line.
func (b *Basket) Line(lineID string) (LineView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx := b.indexLocked(lineID)
	if idx < 0 {
		return LineView{}, lineNotFound(lineID)
	}
	return viewOf(b.lines[idx]), nil
}

// Lines returns the lines in insertion order.
func (b *Basket) Lines() []LineView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]LineView, 0, len(b.lines))
	for _, l := range b.lines {
		out = append(out, viewOf(l))
	}
	return out
}

// Total sums the line totals of the current lines.
func (b *Basket) Total() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalLocked()
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) == 0
}

// View returns the lines and total read under one lock.
func (b *Basket) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lines := make([]LineView, 0, len(b.lines))
	for _, l := range b.lines {
		lines = append(lines, viewOf(l))
	}
	return View{Lines: lines, Total: b.totalLocked()}
}

// Replace discards the local lines and adopts items verbatim. Items with a
// quantity below 1 are skipped. A server quantity above the product's stock
// is kept, with the line's bound raised to match.
func (b *Basket) Replace(items []Item) error {
	lines := make([]*Line, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		variant := it.Variant
		if !variant.IsValid() {
			variant = enums.Variant10kg
		}
		editor, err := quantity.New(max(it.Product.Stock, it.Quantity), it.Quantity)
		if err != nil {
			return err
		}
		id := it.ID
		if id == "" {
			id = b.newID()
		}
		lines = append(lines, &Line{ID: id, Product: it.Product, Variant: variant, editor: editor})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = lines
	return nil
}

// Clear empties the basket.
func (b *Basket) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

func (b *Basket) mutate(lineID string, fn func(*Line) error) (LineView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexLocked(lineID)
	if idx < 0 {
		return LineView{}, lineNotFound(lineID)
	}
	line := b.lines[idx]
	err := fn(line)
	return viewOf(line), err
}

func (b *Basket) indexLocked(lineID string) int {
	for i, l := range b.lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (b *Basket) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lines {
		total = total.Add(l.Total())
	}
	return total
}

func checkVariant(product catalog.Product, variant enums.Variant) error {
	if !variant.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variant %q", variant))
	}
	if len(product.Variants) > 0 && !product.Offers(variant) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product is not sold as %s", variant))
	}
	return nil
}

func lineNotFound(lineID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
		WithDetails(map[string]any{"line_id": lineID})
}
