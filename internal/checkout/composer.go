// Package checkout composes the amount payable and submits orders.
package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Summary is the checkout breakdown shown before an order is placed.
type Summary struct {
	BasketTotal decimal.Decimal `json:"basket_total"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// totaler is satisfied by the basket.
type totaler interface {
	Total() decimal.Decimal
}

// Composer adds the fixed delivery fee to the basket total.
type Composer struct {
	deliveryFee decimal.Decimal
}

// NewComposer builds a composer; the fee must not be negative.
func NewComposer(deliveryFee decimal.Decimal) (*Composer, error) {
	if deliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}
	return &Composer{deliveryFee: deliveryFee}, nil
}

// DeliveryFee returns the configured fee.
func (c *Composer) DeliveryFee() decimal.Decimal {
	return c.deliveryFee
}

// Total is basketTotal plus the delivery fee.
func (c *Composer) Total(basketTotal decimal.Decimal) decimal.Decimal {
	return basketTotal.Add(c.deliveryFee)
}

// Summarize reads the basket total now; nothing is cached between calls.
func (c *Composer) Summarize(basket totaler) Summary {
	basketTotal := basket.Total()
	return Summary{
		BasketTotal: basketTotal,
		DeliveryFee: c.deliveryFee,
		Total:       c.Total(basketTotal),
	}
}
