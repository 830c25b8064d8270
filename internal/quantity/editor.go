// Package quantity validates and commits user-entered quantities against a
// product's stock bound.
package quantity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
)

// Editor holds the committed quantity of one cart line and the text shown
// in its input. After any call 1 <= Committed() <= Stock().
//
// Invalid input is rejected and the display reverts to the committed value.
// Input above stock is clamped to stock and reported as STOCK_EXCEEDED.
type Editor struct {
	committed int
	stock     int
	display   string
}

// New returns an editor bounded by stock and committed to initial.
func New(stock, initial int) (*Editor, error) {
	if stock < 1 {
		return nil, OutOfStock(stock)
	}
	if err := Validate(initial, stock); err != nil {
		return nil, err
	}
	return &Editor{
		committed: initial,
		stock:     stock,
		display:   strconv.Itoa(initial),
	}, nil
}

// Committed returns the last valid quantity.
func (e *Editor) Committed() int {
	return e.committed
}

// Stock returns the current upper bound.
func (e *Editor) Stock() int {
	return e.stock
}

// Display returns the text the quantity input should show.
func (e *Editor) Display() string {
	return e.display
}

// Commit parses text and commits it when 1 <= value <= stock. On
// INVALID_QUANTITY nothing changes except the display reverting; on
// STOCK_EXCEEDED the committed value is clamped to stock.
func (e *Editor) Commit(text string) (int, error) {
	value, err := Parse(text)
	if err != nil {
		e.display = strconv.Itoa(e.committed)
		return e.committed, err
	}
	return e.apply(value)
}

// Increment raises the quantity by one through the commit path.
func (e *Editor) Increment() (int, error) {
	return e.apply(e.committed + 1)
}

// Decrement lowers the quantity by one through the commit path; at 1 it
// fails with INVALID_QUANTITY rather than flooring.
func (e *Editor) Decrement() (int, error) {
	return e.apply(e.committed - 1)
}

// SetStock replaces the bound with a freshly fetched stock level, clamping
// the committed value if it no longer fits.
func (e *Editor) SetStock(stock int) error {
	if stock < 1 {
		return OutOfStock(stock)
	}
	e.stock = stock
	if e.committed > stock {
		e.committed = stock
		e.display = strconv.Itoa(stock)
		return StockExceeded(stock)
	}
	return nil
}

func (e *Editor) apply(value int) (int, error) {
	if err := Validate(value, e.stock); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded) {
			e.committed = e.stock
		}
		e.display = strconv.Itoa(e.committed)
		return e.committed, err
	}
	e.committed = value
	e.display = strconv.Itoa(value)
	return value, nil
}

// Parse reads text as a positive base-10 integer.
func Parse(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, InvalidQuantity("quantity is required")
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		// A positive integer too large for int is still a number above stock.
		if errors.Is(err, strconv.ErrRange) && value > 0 {
			return math.MaxInt, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInvalidQuantity, err, "please enter a valid number")
	}
	if value < 1 {
		return 0, InvalidQuantity("quantity must be at least 1")
	}
	return value, nil
}

// Validate checks value against the [1, stock] bound.
func Validate(value, stock int) error {
	if value < 1 {
		return InvalidQuantity("quantity must be at least 1")
	}
	if value > stock {
		return StockExceeded(stock)
	}
	return nil
}

// InvalidQuantity builds an INVALID_QUANTITY error.
func InvalidQuantity(message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvalidQuantity, message)
}

// StockExceeded builds a STOCK_EXCEEDED error carrying the maximum allowed value.
func StockExceeded(max int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStockExceeded, fmt.Sprintf("only %d items available", max)).
		WithDetails(map[string]any{"max": max})
}

// OutOfStock reports a product that cannot be ordered at all.
func OutOfStock(stock int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStockExceeded, "product is out of stock").
		WithDetails(map[string]any{"max": max(stock, 0)})
}

// MaxAllowed extracts the maximum carried by a STOCK_EXCEEDED error.
func MaxAllowed(err error) (int, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStockExceeded {
		return 0, false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := details["max"].(int)
	return v, ok
}
