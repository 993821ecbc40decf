// Package discount implements the pure discount rules: whether a code may
// be applied to a cart, and how much it is worth. It performs no I/O; code
// lookup lives in the discount service.
package discount

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Line is one cart line as the evaluator sees it. CategoryID is the
// category of the line's product, when the product has one.
type Line struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Subtotal returns unit price times quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Check evaluates the validity rules in order and returns the first failure
// as a domain error, or nil when the discount may be applied. The rule order
// is fixed: active, expiry, start, minimum purchase, usage limit.
func Check(d *model.Discount, subtotal decimal.Decimal, now time.Time) *model.DomainError {
	if d == nil || !d.IsActive {
		return model.ErrInvalidDiscountCode
	}

	if d.ExpiresAt != nil && d.ExpiresAt.Before(now) {
		return model.ErrDiscountExpired
	}

	if d.StartsAt != nil && d.StartsAt.After(now) {
		return model.ErrDiscountNotStarted
	}

	if d.MinPurchase.IsPositive() && subtotal.LessThan(d.MinPurchase) {
		return model.NewMinPurchaseError(d.MinPurchase.String())
	}

	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return model.ErrDiscountUsageLimit
	}

	return nil
}

// Amount computes the monetary discount for a cart. Items are only needed
// for product- and category-scoped discounts. Unrecognised types fail open
// to zero rather than erroring. The result is clamped to [0, subtotal] so a
// discount can never push a total negative.
func Amount(d *model.Discount, subtotal decimal.Decimal, items []Line) decimal.Decimal {
	var amount decimal.Decimal

	switch d.Type {
	case model.DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)

	case model.DiscountFixed:
		amount = decimal.Min(d.Value, subtotal)

	case model.DiscountProduct:
		if d.AppliesToProductID == nil {
			return decimal.Zero
		}
		var scoped decimal.Decimal
		for _, item := range items {
			if item.ProductID == *d.AppliesToProductID {
				scoped = scoped.Add(item.Subtotal())
			}
		}
		amount = scoped.Mul(d.Value).Div(hundred)

	case model.DiscountCategory:
		if d.AppliesToCategoryID == nil {
			return decimal.Zero
		}
		var scoped decimal.Decimal
		for _, item := range items {
			if item.CategoryID != nil && *item.CategoryID == *d.AppliesToCategoryID {
				scoped = scoped.Add(item.Subtotal())
			}
		}
		amount = scoped.Mul(d.Value).Div(hundred)

	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal)
}
