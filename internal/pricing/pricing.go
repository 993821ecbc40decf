// Package pricing combines a cart subtotal, discount amount and delivery
// fee into the final order total.
package pricing

import (
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

// Calculator computes order totals. The delivery fee is injected from
// configuration rather than hardcoded.
type Calculator struct {
	deliveryFee decimal.Decimal
}

// Quote is the priced breakdown of an order.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`
}

// NewCalculator creates a calculator with the configured delivery fee.
func NewCalculator(deliveryFee decimal.Decimal) *Calculator {
	return &Calculator{deliveryFee: deliveryFee}
}

// Fee returns the delivery fee for the chosen option: the configured fee
// for home delivery, zero for pickup.
func (c *Calculator) Fee(option model.DeliveryOption) decimal.Decimal {
	if option == model.DeliveryDelivery {
		return c.deliveryFee
	}
	return decimal.Zero
}

// Quote prices an order: total = subtotal - discount + fee. The discount is
// clamped to the subtotal and the total is floored at zero, so no
// combination of inputs produces a negative charge.
func (c *Calculator) Quote(subtotal, discountAmount decimal.Decimal, option model.DeliveryOption) Quote {
	if discountAmount.IsNegative() {
		discountAmount = decimal.Zero
	}
	discountAmount = decimal.Min(discountAmount, subtotal)

	fee := c.Fee(option)
	total := subtotal.Sub(discountAmount).Add(fee)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		DeliveryFee:    fee,
		Total:          total,
	}
}
