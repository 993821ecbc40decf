package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the cart subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountProduct applies a percentage to lines of one product.
	DiscountProduct DiscountType = "product"
	// DiscountCategory applies a percentage to lines of one category.
	DiscountCategory DiscountType = "category"
)

// Discount is a promotional code. Codes are stored uppercase and compared
// case-insensitively by normalising lookups to uppercase.
type Discount struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Code                string          `json:"code" db:"code"`
	Name                string          `json:"name" db:"name"`
	Description         *string         `json:"description,omitempty" db:"description"`
	Type                DiscountType    `json:"type" db:"type"`
	Value               decimal.Decimal `json:"value" db:"value"`
	MinPurchase         decimal.Decimal `json:"minPurchase" db:"min_purchase"`
	MaxUses             *int            `json:"maxUses,omitempty" db:"max_uses"`
	CurrentUses         int             `json:"currentUses" db:"current_uses"`
	AppliesToProductID  *uuid.UUID      `json:"appliesToProductId,omitempty" db:"applies_to_product_id"`
	AppliesToCategoryID *uuid.UUID      `json:"appliesToCategoryId,omitempty" db:"applies_to_category_id"`
	IsActive            bool            `json:"isActive" db:"is_active"`
	StartsAt            *time.Time      `json:"startsAt,omitempty" db:"starts_at"`
	ExpiresAt           *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}
