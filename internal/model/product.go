package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalogue entry. Purchasable units live on its variants.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	ImageURL    *string    `json:"imageUrl,omitempty" db:"image_url"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	IsFeatured  bool       `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	Variants []Variant `json:"variants,omitempty" db:"-"`
}

// Variant is a purchasable unit of a product ("250g", "docena").
// At most one variant per product should be the default; that is advisory
// and not enforced by the data layer.
type Variant struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Unit      string          `json:"unit" db:"unit"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	IsDefault bool            `json:"isDefault" db:"is_default"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// StockItem is one row of the inventory overview.
type StockItem struct {
	VariantID    uuid.UUID       `json:"variantId"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	VariantUnit  string          `json:"variantUnit"`
	CurrentStock int             `json:"currentStock"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"categoryName"`
	IsDefault    bool            `json:"isDefault"`
}

// StockOverview aggregates the inventory state across all variants.
type StockOverview struct {
	TotalProducts   int         `json:"totalProducts"`
	TotalVariants   int         `json:"totalVariants"`
	LowStockCount   int         `json:"lowStockCount"`
	OutOfStockCount int         `json:"outOfStockCount"`
	Items           []StockItem `json:"items"`
}

// StockUpdate is a single entry in a bulk stock update.
type StockUpdate struct {
	VariantID uuid.UUID `json:"variantId"`
	Stock     int       `json:"stock"`
}
